package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"agentpack/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("AGENTPACK_FFMPEG", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "agentpack")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Atlas.MaxWidth != 2048 {
		t.Fatalf("unexpected max atlas width: %d", cfg.Atlas.MaxWidth)
	}
	if cfg.Atlas.WidthMode != config.WidthModeFixed {
		t.Fatalf("unexpected width mode: %q", cfg.Atlas.WidthMode)
	}
	if cfg.Atlas.Strategy != config.StrategyShelf {
		t.Fatalf("unexpected strategy: %q", cfg.Atlas.Strategy)
	}
	if cfg.Audio.OutputFormat != "mp3" {
		t.Fatalf("unexpected audio format: %q", cfg.Audio.OutputFormat)
	}
	if cfg.Audio.FFmpegBinary != "ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary: %q", cfg.Audio.FFmpegBinary)
	}
	if cfg.Output.ClippyJS {
		t.Fatal("expected clippy.js output disabled by default")
	}
	if !cfg.History.Enabled {
		t.Fatal("expected history enabled by default")
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.StateDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "agentpack.toml")

	type payload struct {
		Paths struct {
			OutputDir string `toml:"output_dir"`
		} `toml:"paths"`
		Atlas struct {
			MaxWidth  int    `toml:"max_width"`
			WidthMode string `toml:"width_mode"`
		} `toml:"atlas"`
		Audio struct {
			OutputFormat string `toml:"output_format"`
			Workers      int    `toml:"workers"`
		} `toml:"audio"`
	}
	custom := payload{}
	custom.Paths.OutputDir = filepath.Join(tempDir, "out")
	custom.Atlas.MaxWidth = 512
	custom.Atlas.WidthMode = "FIT"
	custom.Audio.OutputFormat = ".OGG"
	custom.Audio.Workers = 2

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.OutputDir != filepath.Join(tempDir, "out") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Atlas.MaxWidth != 512 {
		t.Fatalf("unexpected max width: %d", cfg.Atlas.MaxWidth)
	}
	if cfg.Atlas.WidthMode != config.WidthModeFit {
		t.Fatalf("expected width mode normalized to fit, got %q", cfg.Atlas.WidthMode)
	}
	if cfg.Audio.OutputFormat != "ogg" {
		t.Fatalf("expected audio format normalized to ogg, got %q", cfg.Audio.OutputFormat)
	}
	if cfg.SoundFileExtension() != ".ogg" {
		t.Fatalf("unexpected sound extension: %q", cfg.SoundFileExtension())
	}
	if cfg.Audio.Workers != 2 {
		t.Fatalf("unexpected workers: %d", cfg.Audio.Workers)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "agentpack.toml")
	if err := os.WriteFile(configPath, []byte("[atlas]\nmax_widht = 10\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestFFmpegEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("AGENTPACK_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Audio.FFmpegBinary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("expected env override, got %q", cfg.Audio.FFmpegBinary)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*config.Config)
		message string
	}{
		{"zero width", func(c *config.Config) { c.Atlas.MaxWidth = 0 }, "atlas.max_width"},
		{"width mode", func(c *config.Config) { c.Atlas.WidthMode = "stretch" }, "atlas.width_mode"},
		{"strategy", func(c *config.Config) { c.Atlas.Strategy = "maxrects" }, "atlas.strategy"},
		{"padding", func(c *config.Config) { c.Atlas.Padding = -1 }, "atlas.padding"},
		{"atlas name", func(c *config.Config) { c.Atlas.ImageName = "atlas.jpg" }, "atlas.image_name"},
		{"audio format", func(c *config.Config) { c.Audio.OutputFormat = "flac" }, "audio.output_format"},
		{"encoding", func(c *config.Config) { c.Description.Encoding = "shift-jis" }, "description.encoding"},
		{"manifest path", func(c *config.Config) { c.Output.SoundManifest = "sub/sounds.json" }, "output.sound_manifest"},
		{"duplicate names", func(c *config.Config) { c.Output.SoundManifest = "animations.json" }, "distinct"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.message) {
				t.Fatalf("expected %q in %q", tc.message, err.Error())
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	target := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(target); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(target)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Atlas.MaxWidth != config.Default().Atlas.MaxWidth {
		t.Fatalf("sample max width drifted from defaults: %d", cfg.Atlas.MaxWidth)
	}
}
