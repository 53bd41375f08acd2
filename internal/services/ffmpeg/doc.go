// Package ffmpeg wraps the ffmpeg command-line tool as an audio transcoder.
//
// The CLI client converts one source waveform per call into the configured
// web audio format. Failures are tagged with services.ErrTranscodeFailure and
// carry the tail of ffmpeg's stderr so a single bad cue can be reported as a
// warning without aborting the run.
package ffmpeg
