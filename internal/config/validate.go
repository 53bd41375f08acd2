package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAtlas(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateDescription(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateAtlas() error {
	if c.Atlas.MaxWidth <= 0 {
		return errors.New("atlas.max_width must be positive")
	}
	if c.Atlas.Padding < 0 {
		return errors.New("atlas.padding must not be negative")
	}
	if c.Atlas.Padding >= c.Atlas.MaxWidth {
		return errors.New("atlas.padding must be smaller than atlas.max_width")
	}
	switch c.Atlas.WidthMode {
	case WidthModeFixed, WidthModeFit:
	default:
		return fmt.Errorf("atlas.width_mode: unsupported value %q (want %q or %q)", c.Atlas.WidthMode, WidthModeFixed, WidthModeFit)
	}
	switch c.Atlas.Strategy {
	case StrategyShelf, StrategyGrid:
	default:
		return fmt.Errorf("atlas.strategy: unsupported value %q (want %q or %q)", c.Atlas.Strategy, StrategyShelf, StrategyGrid)
	}
	if err := ensureBareFileName("atlas.image_name", c.Atlas.ImageName); err != nil {
		return err
	}
	if !strings.EqualFold(filepath.Ext(c.Atlas.ImageName), ".png") {
		return errors.New("atlas.image_name must end in .png")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if !slices.Contains(SupportedAudioFormats, c.Audio.OutputFormat) {
		return fmt.Errorf("audio.output_format: unsupported value %q (supported: %s)", c.Audio.OutputFormat, strings.Join(SupportedAudioFormats, ", "))
	}
	if err := ensurePositiveMap(map[string]int{
		"audio.workers":         c.Audio.Workers,
		"audio.timeout_seconds": c.Audio.TimeoutSeconds,
		"atlas.decode_workers":  c.Atlas.DecodeWorkers,
	}); err != nil {
		return err
	}
	if strings.Contains(c.Audio.Directory, "..") {
		return errors.New("audio.directory must stay inside the output directory")
	}
	return nil
}

func (c *Config) validateDescription() error {
	if !slices.Contains(SupportedEncodings, c.Description.Encoding) {
		return fmt.Errorf("description.encoding: unsupported value %q (supported: %s)", c.Description.Encoding, strings.Join(SupportedEncodings, ", "))
	}
	return nil
}

func (c *Config) validateOutput() error {
	if err := ensureBareFileName("output.animation_manifest", c.Output.AnimationManifest); err != nil {
		return err
	}
	if err := ensureBareFileName("output.sound_manifest", c.Output.SoundManifest); err != nil {
		return err
	}
	names := []string{c.Output.AnimationManifest, c.Output.SoundManifest, c.Atlas.ImageName}
	for i := range names {
		for j := i + 1; j < len(names); j++ {
			if strings.EqualFold(names[i], names[j]) {
				return fmt.Errorf("output file names must be distinct (%q used twice)", names[i])
			}
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func ensureBareFileName(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s must be set", key)
	}
	if strings.ContainsAny(value, `/\`) || value == "." || value == ".." {
		return fmt.Errorf("%s must be a file name, not a path (got %q)", key, value)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	for _, key := range keys {
		if values[key] <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
