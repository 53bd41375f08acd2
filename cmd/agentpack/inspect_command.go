package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"agentpack/internal/pipeline"
)

type inspectView struct {
	Agent       string `json:"agent" yaml:"agent"`
	Description string `json:"description" yaml:"description"`
	Model       any    `json:"model" yaml:"model"`
}

func newInspectCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool
	var summary bool

	cmd := &cobra.Command{
		Use:   "inspect <bundle-dir>",
		Short: "Parse a bundle and print its animation model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bundle, err := pipeline.Load(cmd.Context(), cfg, args[0])
			if err != nil {
				return err
			}

			if summary {
				printInspectSummary(cmd, bundle)
				return nil
			}
			view := inspectView{Agent: bundle.Agent, Description: bundle.Description, Model: bundle.Model}
			if asJSON {
				return writeJSON(cmd, view)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(view); err != nil {
				return fmt.Errorf("encode model: %w", err)
			}
			return enc.Close()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the model as JSON instead of YAML")
	cmd.Flags().BoolVar(&summary, "summary", false, "Print one row per animation")
	return cmd
}

func printInspectSummary(cmd *cobra.Command, bundle *pipeline.Bundle) {
	out := cmd.OutOrStdout()
	stats := bundle.Model.Stats()
	fmt.Fprintf(out, "%s: %d animations, %d frames, %d images, %d sound cues, %d states\n",
		bundle.Agent, stats.Animations, stats.Frames, stats.Images, stats.Cues, stats.States)

	rows := make([][]string, 0, len(bundle.Model.Animations))
	for _, anim := range bundle.Model.Animations {
		duration := 0
		cues := 0
		for _, frame := range anim.Frames {
			duration += frame.DurationMs
			cues += len(frame.Sounds)
		}
		rows = append(rows, []string{
			anim.Name,
			strconv.Itoa(len(anim.Frames)),
			strconv.Itoa(duration),
			strconv.Itoa(cues),
			strconv.Itoa(anim.TransitionType),
			anim.ReturnAnimation,
			yesNo(anim.Looping),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Animation", "Frames", "Duration (ms)", "Cues", "Transition", "Return", "Loops"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))
}
