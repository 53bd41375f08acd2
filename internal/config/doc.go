// Package config loads, normalizes, and validates agentpack configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// AGENTPACK_FFMPEG. The Config type centralizes every knob the converter and
// CLI need, so atlas limits, audio output choices, and output locations are
// discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
