package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir string `toml:"output_dir"`
	StateDir  string `toml:"state_dir"`
	LogDir    string `toml:"log_dir"`
}

// Atlas contains configuration for frame atlas packing.
type Atlas struct {
	// MaxWidth caps the width of a packed row. A single frame wider than this
	// fails the run with an atlas overflow.
	MaxWidth int `toml:"max_width"`
	// WidthMode is "fixed" (atlas is exactly MaxWidth wide) or "fit" (atlas is
	// shrunk to the widest packed row).
	WidthMode string `toml:"width_mode"`
	// Strategy selects the packing algorithm: "shelf" or "grid".
	Strategy  string `toml:"strategy"`
	Padding   int    `toml:"padding"`
	ImageName string `toml:"image_name"`
	// DecodeWorkers bounds concurrent frame image decodes.
	DecodeWorkers int `toml:"decode_workers"`
}

// Audio contains configuration for cue transcoding.
type Audio struct {
	OutputFormat  string `toml:"output_format"`
	FFmpegBinary  string `toml:"ffmpeg_binary"`
	FFprobeBinary string `toml:"ffprobe_binary"`
	Workers       int    `toml:"workers"`
	Verify        bool   `toml:"verify"`
	// TimeoutSeconds bounds a single cue transcode.
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Directory      string `toml:"directory"`
}

// Description contains configuration for reading the decompiled script.
type Description struct {
	Encoding string `toml:"encoding"`
}

// Output contains artifact naming and optional renderers.
type Output struct {
	AnimationManifest string `toml:"animation_manifest"`
	SoundManifest     string `toml:"sound_manifest"`
	ClippyJS          bool   `toml:"clippy_js"`
}

// History contains configuration for the run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for agentpack.
//
// Configuration sections by subsystem:
//   - Paths: output, state, and log directories
//   - Atlas: packing strategy and width limits
//   - Audio: transcoder binaries, output format, worker pool
//   - Description: legacy script decoding
//   - Output: manifest file names and optional clippy.js renderers
//   - History: run ledger toggle
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Atlas       Atlas       `toml:"atlas"`
	Audio       Audio       `toml:"audio"`
	Description Description `toml:"description"`
	Output      Output      `toml:"output"`
	History     History     `toml:"history"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/agentpack/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("agentpack.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// Finalize re-applies normalization and validation after callers mutate the
// config (for example from CLI flag overrides).
func (c *Config) Finalize() error {
	if err := c.normalize(); err != nil {
		return err
	}
	return c.Validate()
}

// EnsureDirectories creates the directories a build run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LogDir) != "" {
		if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
		}
	}
	return nil
}

// HistoryPath returns the location of the run ledger database.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.Paths.StateDir, "history.db")
}

// SoundFileExtension returns the file extension for transcoded cues.
func (c *Config) SoundFileExtension() string {
	return "." + c.Audio.OutputFormat
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
