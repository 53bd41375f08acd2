package services

import (
	"errors"
	"fmt"
	"strings"
)

// Conversion error taxonomy. Every failure surfaced by the pipeline carries
// exactly one of these markers so callers can classify it with errors.Is.
var (
	ErrMalformedDescription     = errors.New("malformed description")
	ErrDuplicateAnimationName   = errors.New("duplicate animation name")
	ErrMissingAudioResource     = errors.New("missing audio resource")
	ErrMissingImageResource     = errors.New("missing image resource")
	ErrAtlasOverflow            = errors.New("atlas overflow")
	ErrTranscodeFailure         = errors.New("transcode failure")
	ErrUnresolvedFrameReference = errors.New("unresolved frame reference")

	ErrConfiguration = errors.New("configuration error")
	ErrExternalTool  = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRecoverable reports whether err only affects a single sound cue. Every
// other marker aborts the run.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTranscodeFailure) {
		return !isStructural(err)
	}
	return false
}

// Kind returns a short machine-readable label for the marker carried by err.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrDuplicateAnimationName):
		return "duplicate_animation_name"
	case errors.Is(err, ErrMissingImageResource):
		return "missing_image_resource"
	case errors.Is(err, ErrMissingAudioResource):
		return "missing_audio_resource"
	case errors.Is(err, ErrMalformedDescription):
		return "malformed_description"
	case errors.Is(err, ErrAtlasOverflow):
		return "atlas_overflow"
	case errors.Is(err, ErrUnresolvedFrameReference):
		return "unresolved_frame_reference"
	case errors.Is(err, ErrTranscodeFailure):
		return "transcode_failure"
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrExternalTool):
		return "external_tool"
	default:
		return "internal"
	}
}

func isStructural(err error) bool {
	return errors.Is(err, ErrMalformedDescription) ||
		errors.Is(err, ErrDuplicateAnimationName) ||
		errors.Is(err, ErrMissingAudioResource) ||
		errors.Is(err, ErrMissingImageResource) ||
		errors.Is(err, ErrAtlasOverflow) ||
		errors.Is(err, ErrUnresolvedFrameReference)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
