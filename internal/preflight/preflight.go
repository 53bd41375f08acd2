package preflight

import (
	"context"
	"strings"

	"agentpack/internal/config"
	"agentpack/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}

// RunAll executes the filesystem checks for cfg. bundleDir is optional.
func RunAll(ctx context.Context, cfg *config.Config, bundleDir string) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result
	if strings.TrimSpace(bundleDir) != "" {
		results = append(results, CheckBundle(bundleDir))
	}
	results = append(results, CheckWritableTarget("Output directory", cfg.Paths.OutputDir))
	if cfg.History.Enabled {
		results = append(results, CheckWritableTarget("State directory", cfg.Paths.StateDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckWritableTarget("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// CheckSystemDeps evaluates the external binaries required by cfg.
func CheckSystemDeps(ctx context.Context, cfg *config.Config) []deps.Status {
	requirements := []deps.Requirement{
		{
			Name:        "FFmpeg",
			Command:     cfg.Audio.FFmpegBinary,
			Description: "Required for sound cue transcoding",
		},
		{
			Name:        "FFprobe",
			Command:     cfg.Audio.FFprobeBinary,
			Description: "Verifies transcoded sound artifacts",
			Optional:    !cfg.Audio.Verify,
		},
	}
	statuses := deps.CheckBinaries(requirements)
	if statuses[0].Available {
		statuses = append(statuses, deps.CheckFFmpegEncoder(ctx, cfg.Audio.FFmpegBinary, cfg.Audio.OutputFormat))
	}
	return statuses
}
