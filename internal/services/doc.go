// Package services defines shared utilities consumed by the pipeline stages
// and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run identifiers and stage names for logging
//     and tracing.
//   - Structured error markers plus the Wrap helper that classify failures
//     into fatal conversion errors and recoverable per-cue warnings.
//   - Thin abstractions (see the ffmpeg subpackage) that make external tool
//     execution testable.
//
// Use these helpers when wiring new stage logic so error classification and
// observability stay uniform across the pipeline.
package services
