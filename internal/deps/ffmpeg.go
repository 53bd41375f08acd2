package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// encoderForFormat names the ffmpeg encoder each output format needs.
var encoderForFormat = map[string]string{
	"mp3":  "libmp3lame",
	"ogg":  "libvorbis",
	"opus": "libopus",
	"m4a":  "aac",
	"wav":  "pcm_s16le",
}

// CheckFFmpegEncoder reports whether binary was built with the encoder the
// configured audio format requires.
func CheckFFmpegEncoder(ctx context.Context, binary, format string) Status {
	encoder, ok := encoderForFormat[strings.ToLower(strings.TrimSpace(format))]
	result := Status{
		Name:        "FFmpeg encoder",
		Command:     binary,
		Description: fmt.Sprintf("Encodes %s sound cues", format),
	}
	if !ok {
		result.Detail = fmt.Sprintf("unsupported audio format %q", format)
		return result
	}
	result.Name = "FFmpeg " + encoder

	checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	output, err := commandContext(checkCtx, binary, "-hide_banner", "-encoders").Output() //nolint:gosec
	if err != nil {
		result.Detail = fmt.Sprintf("list encoders: %v", err)
		return result
	}
	if hasEncoder(output, encoder) {
		result.Available = true
		return result
	}
	result.Detail = fmt.Sprintf("encoder %q not compiled into %s", encoder, binary)
	return result
}

// hasEncoder scans `ffmpeg -encoders` output. Encoder lines look like
// " A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3)".
func hasEncoder(output []byte, encoder string) bool {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) >= 2 && fields[1] == encoder {
			return true
		}
	}
	return false
}
