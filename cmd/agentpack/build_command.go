package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"agentpack/internal/config"
	"agentpack/internal/pipeline"
)

type buildFlags struct {
	output        string
	maxAtlasWidth int
	widthMode     string
	strategy      string
	audioFormat   string
	workers       int
	clippy        bool
	noHistory     bool
	json          bool
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var flags buildFlags

	cmd := &cobra.Command{
		Use:   "build <bundle-dir>",
		Short: "Convert a decompiled bundle into manifests, atlas and sounds",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := applyBuildFlags(cmd, cfg, flags); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd, cfg)
			if err != nil {
				return err
			}

			opts := pipeline.Options{Logger: logger}
			var progress *cueProgress
			if !flags.json && isTerminal(cmd.ErrOrStderr()) {
				progress = newCueProgress(cmd.ErrOrStderr())
				opts.Progress = progress.update
			}
			runner, err := pipeline.New(cfg, opts)
			if err != nil {
				return err
			}
			result, err := runner.Run(cmd.Context(), args[0])
			if progress != nil {
				progress.finish()
			}
			if err != nil {
				return err
			}

			if flags.json {
				return writeJSON(cmd, newBuildView(result))
			}
			printBuildSummary(cmd, result)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output directory")
	cmd.Flags().IntVar(&flags.maxAtlasWidth, "max-atlas-width", 0, "Maximum atlas width in pixels")
	cmd.Flags().StringVar(&flags.widthMode, "atlas-width-mode", "", "Atlas width mode (fixed, fit)")
	cmd.Flags().StringVar(&flags.strategy, "atlas-strategy", "", "Atlas packing strategy (shelf, grid)")
	cmd.Flags().StringVar(&flags.audioFormat, "audio-format", "", "Sound output format (mp3, ogg, opus, m4a, wav)")
	cmd.Flags().IntVar(&flags.workers, "workers", 0, "Concurrent sound transcodes")
	cmd.Flags().BoolVar(&flags.clippy, "clippy", false, "Also write clippy.js agent and sound scripts")
	cmd.Flags().BoolVar(&flags.noHistory, "no-history", false, "Do not record this run in the history ledger")
	cmd.Flags().BoolVar(&flags.json, "json", false, "Print the run result as JSON")
	return cmd
}

func applyBuildFlags(cmd *cobra.Command, cfg *config.Config, flags buildFlags) error {
	changed := cmd.Flags().Changed
	if changed("output") {
		cfg.Paths.OutputDir = flags.output
	}
	if changed("max-atlas-width") {
		cfg.Atlas.MaxWidth = flags.maxAtlasWidth
	}
	if changed("atlas-width-mode") {
		cfg.Atlas.WidthMode = flags.widthMode
	}
	if changed("atlas-strategy") {
		cfg.Atlas.Strategy = flags.strategy
	}
	if changed("audio-format") {
		cfg.Audio.OutputFormat = flags.audioFormat
	}
	if changed("workers") {
		cfg.Audio.Workers = flags.workers
	}
	if flags.clippy {
		cfg.Output.ClippyJS = true
	}
	if flags.noHistory {
		cfg.History.Enabled = false
	}
	if err := cfg.Finalize(); err != nil {
		return fmt.Errorf("invalid build options: %w", err)
	}
	return nil
}

type buildWarningView struct {
	Cue     string `json:"cue"`
	Source  string `json:"source"`
	Message string `json:"message"`
}

type buildView struct {
	*pipeline.Result
	Warnings []buildWarningView `json:"warnings"`
}

func newBuildView(result *pipeline.Result) buildView {
	view := buildView{Result: result, Warnings: []buildWarningView{}}
	for _, w := range result.Warnings {
		view.Warnings = append(view.Warnings, buildWarningView{Cue: w.Cue, Source: w.Source, Message: w.Message()})
	}
	return view
}

func printBuildSummary(cmd *cobra.Command, result *pipeline.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Converted %s (run %s)\n", result.Agent, result.RunID)
	rows := [][]string{
		{"Animations", strconv.Itoa(result.Stats.Animations)},
		{"Frames", strconv.Itoa(result.Stats.Frames)},
		{"Atlas images", strconv.Itoa(result.Stats.Images)},
		{"Atlas size", fmt.Sprintf("%dx%d", result.AtlasSize[0], result.AtlasSize[1])},
		{"Sound cues", fmt.Sprintf("%d of %d", result.Sounds, result.Stats.Cues)},
		{"Clippy scripts", yesNo(len(result.Outputs.Clippy) > 0)},
		{"Output", result.Outputs.Directory},
	}
	fmt.Fprintln(out, renderTable([]string{"Item", "Value"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(result.Warnings) == 0 {
		return
	}
	warnRows := make([][]string, 0, len(result.Warnings))
	for _, w := range result.Warnings {
		warnRows = append(warnRows, []string{w.Cue, w.Source, strings.TrimSpace(w.Message())})
	}
	fmt.Fprintf(out, "\n%d sound cue(s) dropped:\n", len(result.Warnings))
	fmt.Fprintln(out, renderTable([]string{"Cue", "Source", "Error"}, warnRows, nil))
}
