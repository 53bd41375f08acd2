package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"agentpack/internal/preflight"
)

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [bundle-dir]",
		Short: "Check external tools and directory permissions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			bundleDir := ""
			if len(args) == 1 {
				bundleDir = args[0]
			}

			failures := 0
			rows := [][]string{}
			for _, status := range preflight.CheckSystemDeps(cmd.Context(), cfg) {
				state := "ok"
				switch {
				case !status.Available && status.Optional:
					state = "missing (optional)"
				case !status.Available:
					state = "missing"
					failures++
				}
				rows = append(rows, []string{status.Name, state, status.Detail})
			}
			for _, result := range preflight.RunAll(cmd.Context(), cfg, bundleDir) {
				state := "ok"
				if !result.Passed {
					state = "failed"
					failures++
				}
				rows = append(rows, []string{result.Name, state, result.Detail})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Check", "Status", "Detail"}, rows, nil))
			if failures > 0 {
				return errors.New(pluralize(failures, "check failed", "checks failed"))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All checks passed")
			return nil
		},
	}
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}
