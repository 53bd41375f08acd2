package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"agentpack/internal/services"
)

var commandContext = exec.CommandContext

// stderrTailLimit bounds the diagnostic text attached to failures.
const stderrTailLimit = 512

// Request describes a single transcode.
type Request struct {
	SourcePath string
	OutputPath string
	Format     string
}

// AudioTranscoder converts source waveforms to a web audio format.
type AudioTranscoder interface {
	Transcode(ctx context.Context, req Request) error
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Binary returns the executable the client invokes.
func (c *CLI) Binary() string {
	return c.binary
}

// CodecArgs returns the encoder arguments for an output format.
func CodecArgs(format string) ([]string, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "mp3":
		return []string{"-vn", "-c:a", "libmp3lame", "-q:a", "4"}, nil
	case "ogg":
		return []string{"-vn", "-c:a", "libvorbis", "-q:a", "4"}, nil
	case "opus":
		return []string{"-vn", "-c:a", "libopus", "-b:a", "64k"}, nil
	case "m4a":
		return []string{"-vn", "-c:a", "aac", "-b:a", "128k"}, nil
	case "wav":
		return []string{"-vn", "-c:a", "pcm_s16le"}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported audio format %q", services.ErrConfiguration, format)
	}
}

// Transcode runs ffmpeg for one source file.
func (c *CLI) Transcode(ctx context.Context, req Request) error {
	if strings.TrimSpace(req.SourcePath) == "" {
		return errors.New("source path required")
	}
	if strings.TrimSpace(req.OutputPath) == "" {
		return errors.New("output path required")
	}
	codec, err := CodecArgs(req.Format)
	if err != nil {
		return err
	}

	args := []string{"-nostdin", "-hide_banner", "-loglevel", "error", "-y", "-i", req.SourcePath}
	args = append(args, codec...)
	args = append(args, req.OutputPath)

	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return services.Wrap(services.ErrTranscodeFailure, "sounds", "ffmpeg", "transcode interrupted", ctxErr)
		}
		message := "ffmpeg failed"
		if tail := tailText(stderr.String(), stderrTailLimit); tail != "" {
			message = fmt.Sprintf("ffmpeg failed: %s", tail)
		}
		return services.Wrap(services.ErrTranscodeFailure, "sounds", "ffmpeg", message, err)
	}
	return nil
}

func tailText(text string, limit int) string {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= limit {
		return trimmed
	}
	trimmed = trimmed[len(trimmed)-limit:]
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 && idx < len(trimmed)-1 {
		trimmed = trimmed[idx+1:]
	}
	return trimmed
}

var _ AudioTranscoder = (*CLI)(nil)
