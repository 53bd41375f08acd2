package main

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"agentpack/internal/config"
	"agentpack/internal/logging"
)

type commandContext struct {
	configFlag    *string
	logLevelFlag  *string
	logFormatFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag, logLevelFlag, logFormatFlag *string) *commandContext {
	return &commandContext{
		configFlag:    configFlag,
		logLevelFlag:  logLevelFlag,
		logFormatFlag: logFormatFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = *c.logLevelFlag
		}
		if c.logFormatFlag != nil && strings.TrimSpace(*c.logFormatFlag) != "" {
			cfg.Logging.Format = *c.logFormatFlag
		}
		if err := cfg.Finalize(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// logger builds the run logger. Console output goes to the command's stderr
// so tests can capture it; a configured log directory receives a copy.
func (c *commandContext) logger(cmd *cobra.Command, cfg *config.Config) (*slog.Logger, error) {
	if cfg.Paths.LogDir != "" {
		return logging.NewFromConfig(cfg)
	}
	return logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
