package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var configFlag string
	var logLevelFlag string
	var logFormatFlag string

	ctx := newCommandContext(&configFlag, &logLevelFlag, &logFormatFlag)

	rootCmd := &cobra.Command{
		Use:           "agentpack",
		Short:         "Convert decompiled MS Agent characters into web assets",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level override (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "", "Log format override (console, json)")

	rootCmd.AddCommand(newBuildCommand(ctx))
	rootCmd.AddCommand(newInspectCommand(ctx))
	rootCmd.AddCommand(newHistoryCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))

	return rootCmd
}
