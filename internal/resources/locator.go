package resources

import (
	"context"
	"image"
	"path"
	"strings"
	"time"
)

// AudioInfo summarises a waveform header.
type AudioInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// DurationMs returns the waveform duration rounded down to whole milliseconds.
func (a AudioInfo) DurationMs() int {
	return int(a.Duration / time.Millisecond)
}

// Locator resolves description references to stable resource identities.
// Identities are bundle-relative paths using forward slashes.
type Locator interface {
	ResolveImage(ref string) (string, error)
	ResolveAudio(ref string) (string, error)
	DecodeImage(ctx context.Context, id string) (image.Image, error)
	InspectAudio(ctx context.Context, id string) (AudioInfo, error)
	// AudioPath returns the filesystem path handed to external tools.
	AudioPath(id string) string
}

// NormalizeRef converts a description reference into a lower-cased forward
// slash path suitable for lookups.
func NormalizeRef(ref string) string {
	cleaned := strings.TrimSpace(ref)
	cleaned = strings.Trim(cleaned, `"`)
	cleaned = strings.ReplaceAll(cleaned, `\`, "/")
	cleaned = strings.TrimPrefix(cleaned, "./")
	cleaned = strings.TrimLeft(cleaned, "/")
	if cleaned == "" {
		return ""
	}
	return strings.ToLower(path.Clean(cleaned))
}

// BaseName returns the final element of a reference in either slash style,
// preserving its case.
func BaseName(ref string) string {
	cleaned := strings.ReplaceAll(strings.TrimSpace(ref), `\`, "/")
	if idx := strings.LastIndex(cleaned, "/"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	}
	return cleaned
}
