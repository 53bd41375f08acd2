// Package manifest emits the animation manifest consumed by web runtimes.
//
// Emit joins the animation model with the atlas layout and the sound manifest:
// every frame image is replaced by its atlas rectangle and every sound
// reference by a cue key present in the sound manifest. Cues that failed to
// transcode are left out of frames. A frame image without a rectangle is an
// internal fault reported as services.ErrUnresolvedFrameReference.
//
// Documents are rendered as indented JSON with sorted keys and no timestamps,
// so identical inputs always produce identical bytes. WriteClippyJS renders the
// same data in the clippy.js agent format.
package manifest
