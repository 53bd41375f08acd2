// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// agentpack uses it to confirm that transcoded cue artifacts actually carry an
// audio stream before they are listed in the sound manifest.
//
// Primary entry points:
//   - Inspect: executes ffprobe and returns parsed Result
//   - VerifyAudio: inspects an artifact and fails when it has no audio stream
package ffprobe
