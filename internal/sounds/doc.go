// Package sounds transcodes the sound cues referenced by an animation model and
// builds the sound manifest.
//
// Cues are grouped by their resolved source waveform so each file is
// transcoded once even when several cue identifiers point at it. Transcodes
// run on a bounded worker pool. A transcode failure only drops the affected
// cues and is reported as a Warning; a missing source aborts the build.
package sounds
