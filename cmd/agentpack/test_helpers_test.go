package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fakeFFmpeg lists the mp3 encoder and otherwise writes a placeholder into
// its last argument.
const fakeFFmpeg = `#!/bin/sh
if [ "$2" = "-encoders" ]; then
  echo " A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3)"
  exit 0
fi
for arg; do out="$arg"; done
printf 'encoded' > "$out"
`

type cliTestEnv struct {
	baseDir    string
	configPath string
	outputDir  string
	stateDir   string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("AGENTPACK_FFMPEG", "")

	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	ffmpegPath := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(ffmpegPath, []byte(fakeFFmpeg), 0o755); err != nil {
		t.Fatalf("write ffmpeg stub: %v", err)
	}
	ffprobePath := filepath.Join(binDir, "ffprobe")
	if err := os.WriteFile(ffprobePath, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write ffprobe stub: %v", err)
	}

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "agentpack.toml"),
		outputDir:  filepath.Join(base, "out"),
		stateDir:   filepath.Join(base, "state"),
	}
	content := fmt.Sprintf(
		"[paths]\noutput_dir = %q\nstate_dir = %q\n\n[atlas]\nmax_width = 256\n\n[audio]\nffmpeg_binary = %q\nffprobe_binary = %q\nworkers = 2\n",
		env.outputDir,
		env.stateDir,
		ffmpegPath,
		ffprobePath,
	)
	if err := os.WriteFile(env.configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
