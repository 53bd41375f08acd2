package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"agentpack/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.OutputDir = filepath.Join(base, "out")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = ""
	cfgVal.Audio.Workers = 2
	cfgVal.Atlas.DecodeWorkers = 2
	cfgVal.Atlas.MaxWidth = 256

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithAudioFormat sets the transcode target on the test config.
func WithAudioFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.OutputFormat = format
	}
}

// WithMaxAtlasWidth overrides the atlas row width limit.
func WithMaxAtlasWidth(width int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Atlas.MaxWidth = width
	}
}

// WithoutHistory disables the run ledger.
func WithoutHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = false
	}
}

// WithStubbedBinaries writes stub executables for the provided names and
// prepends them to PATH. If names is empty, ffmpeg and ffprobe are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{"ffmpeg", "ffprobe"}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		script := []byte("#!/bin/sh\nexit 0\n")
		for _, name := range names {
			target := filepath.Join(binDir, name)
			if err := os.WriteFile(target, script, 0o755); err != nil {
				b.t.Fatalf("write stub %s: %v", name, err)
			}
		}

		oldPath := os.Getenv("PATH")
		if err := os.Setenv("PATH", binDir+string(os.PathListSeparator)+oldPath); err != nil {
			b.t.Fatalf("set PATH: %v", err)
		}
		b.t.Cleanup(func() {
			_ = os.Setenv("PATH", oldPath)
		})
	}
}
