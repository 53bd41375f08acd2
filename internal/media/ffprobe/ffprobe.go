package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"

	"agentpack/internal/services"
)

var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the container.
type Stream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path) //nolint:gosec
	output, err := cmd.Output()
	if err != nil {
		return Result{}, services.Wrap(services.ErrExternalTool, "sounds", "ffprobe", path, err)
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// VerifyAudio inspects an artifact and reports a transcode failure when ffprobe
// cannot read it or finds no audio stream.
func VerifyAudio(ctx context.Context, binary string, path string) (Result, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return Result{}, services.Wrap(services.ErrTranscodeFailure, "sounds", "verify", "artifact unreadable", err)
	}
	if result.AudioStreamCount() == 0 {
		return result, services.Wrap(services.ErrTranscodeFailure, "sounds", "verify", fmt.Sprintf("%s has no audio stream", path), nil)
	}
	return result, nil
}

// AudioStreamCount returns the number of audio streams discovered.
func (r Result) AudioStreamCount() int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			count++
		}
	}
	return count
}

// PrimaryCodec returns the codec of the first audio stream.
func (r Result) PrimaryCodec() string {
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, "audio") {
			return stream.CodecName
		}
	}
	return ""
}

// DurationSeconds returns the container duration in seconds, or 0 when unavailable.
func (r Result) DurationSeconds() float64 {
	return parseFloat(r.Format.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if math.IsNaN(size) || size < 0 {
		return 0
	}
	return int64(size)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
