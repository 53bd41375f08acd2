package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeAtlas()
	c.normalizeAudio()
	c.normalizeOutput()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeAtlas() {
	c.Atlas.WidthMode = strings.ToLower(strings.TrimSpace(c.Atlas.WidthMode))
	if c.Atlas.WidthMode == "" {
		c.Atlas.WidthMode = defaultAtlasWidthMode
	}
	c.Atlas.Strategy = strings.ToLower(strings.TrimSpace(c.Atlas.Strategy))
	if c.Atlas.Strategy == "" {
		c.Atlas.Strategy = defaultAtlasStrategy
	}
	c.Atlas.ImageName = strings.TrimSpace(c.Atlas.ImageName)
	if c.Atlas.ImageName == "" {
		c.Atlas.ImageName = defaultAtlasImageName
	}
	if c.Atlas.DecodeWorkers <= 0 {
		c.Atlas.DecodeWorkers = defaultDecodeWorkers
	}
}

func (c *Config) normalizeAudio() {
	format := strings.ToLower(strings.TrimSpace(c.Audio.OutputFormat))
	c.Audio.OutputFormat = strings.TrimPrefix(format, ".")
	if c.Audio.OutputFormat == "" {
		c.Audio.OutputFormat = defaultAudioFormat
	}
	c.Audio.FFmpegBinary = strings.TrimSpace(c.Audio.FFmpegBinary)
	if c.Audio.FFmpegBinary == "" || c.Audio.FFmpegBinary == defaultFFmpegBinary {
		if value, ok := os.LookupEnv("AGENTPACK_FFMPEG"); ok && strings.TrimSpace(value) != "" {
			c.Audio.FFmpegBinary = strings.TrimSpace(value)
		}
	}
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = defaultFFmpegBinary
	}
	c.Audio.FFprobeBinary = strings.TrimSpace(c.Audio.FFprobeBinary)
	if c.Audio.FFprobeBinary == "" {
		c.Audio.FFprobeBinary = defaultFFprobeBinary
	}
	if c.Audio.Workers <= 0 {
		c.Audio.Workers = defaultAudioWorkers
	}
	if c.Audio.TimeoutSeconds <= 0 {
		c.Audio.TimeoutSeconds = defaultAudioTimeout
	}
	c.Audio.Directory = filepath.ToSlash(strings.Trim(strings.TrimSpace(c.Audio.Directory), "/\\"))
	if c.Audio.Directory == "" {
		c.Audio.Directory = defaultAudioDirectory
	}
	c.Description.Encoding = strings.ToLower(strings.TrimSpace(c.Description.Encoding))
	if c.Description.Encoding == "" {
		c.Description.Encoding = defaultEncoding
	}
}

func (c *Config) normalizeOutput() {
	c.Output.AnimationManifest = strings.TrimSpace(c.Output.AnimationManifest)
	if c.Output.AnimationManifest == "" {
		c.Output.AnimationManifest = defaultAnimationManifest
	}
	c.Output.SoundManifest = strings.TrimSpace(c.Output.SoundManifest)
	if c.Output.SoundManifest == "" {
		c.Output.SoundManifest = defaultSoundManifest
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
