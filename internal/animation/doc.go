// Package animation builds the immutable animation model from a parsed agent
// description.
//
// Build validates every cross reference in the record stream: animation names
// are unique (case-insensitive), frame images and sound cues exist in the
// bundle, exit and branch targets stay inside their animation, probabilities
// sum to at most 100, and states and return animations name real animations.
// Frame order is preserved exactly as declared. The resulting Model is shared
// read-only by the atlas packer, the sound builder and the manifest emitter.
package animation
