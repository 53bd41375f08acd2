// Package pipeline runs one bundle conversion end to end.
//
// A run acquires an advisory lock on the output directory, parses the
// description into an animation model, then packs the frame atlas and
// transcodes sound cues concurrently. Once both finish the animation manifest
// is emitted and every artifact is written into a staging directory that is
// moved into place only after the whole run succeeded. Recoverable cue
// failures surface as warnings on the Result; every other error aborts the run
// and leaves the output directory untouched.
package pipeline
