package deps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: " "},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}
}

func stubEncoders(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "ENCODERS_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestCheckFFmpegEncoder(t *testing.T) {
	stubEncoders(t, "lame")

	status := CheckFFmpegEncoder(context.Background(), "ffmpeg", "mp3")
	if !status.Available || status.Name != "FFmpeg libmp3lame" {
		t.Fatalf("expected libmp3lame to be available, got %#v", status)
	}
	status = CheckFFmpegEncoder(context.Background(), "ffmpeg", "opus")
	if status.Available || status.Detail == "" {
		t.Fatalf("expected libopus to be missing, got %#v", status)
	}
}

func TestCheckFFmpegEncoderFailures(t *testing.T) {
	stubEncoders(t, "failure")
	if status := CheckFFmpegEncoder(context.Background(), "ffmpeg", "mp3"); status.Available {
		t.Fatalf("expected failure when ffmpeg errors, got %#v", status)
	}
	if status := CheckFFmpegEncoder(context.Background(), "ffmpeg", "flac"); status.Available || status.Detail == "" {
		t.Fatalf("expected unsupported format, got %#v", status)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("ENCODERS_HELPER_MODE") {
	case "lame":
		fmt.Println("Encoders:")
		fmt.Println(" A..... = Audio")
		fmt.Println(" ------")
		fmt.Println(" A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3) (codec mp3)")
		fmt.Println(" A....D pcm_s16le            PCM signed 16-bit little-endian")
		os.Exit(0)
	case "failure":
		os.Exit(1)
	default:
		os.Exit(0)
	}
}
