package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"agentpack/internal/history"
)

type historyRunView struct {
	ID         string    `json:"id"`
	Agent      string    `json:"agent,omitempty"`
	Bundle     string    `json:"bundle"`
	Output     string    `json:"output"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Frames     int       `json:"frames"`
	Cues       int       `json:"cues"`
	Warnings   int       `json:"warnings"`
	Error      string    `json:"error,omitempty"`
}

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversion runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.HistoryPath()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				if asJSON {
					return writeJSON(cmd, []historyRunView{})
				}
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}

			store, err := history.Open(cmd.Context(), path)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			runs, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				views := make([]historyRunView, 0, len(runs))
				for _, run := range runs {
					views = append(views, historyRunView{
						ID:         run.ID,
						Agent:      run.Agent,
						Bundle:     run.Bundle,
						Output:     run.Output,
						Status:     string(run.Status),
						StartedAt:  run.StartedAt,
						FinishedAt: run.FinishedAt,
						Frames:     run.Frames,
						Cues:       run.Cues,
						Warnings:   run.Warnings,
						Error:      run.ErrorMessage,
					})
				}
				return writeJSON(cmd, views)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
				return nil
			}
			printHistory(cmd, runs)
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print runs as JSON")
	return cmd
}

func printHistory(cmd *cobra.Command, runs []history.Run) {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		status := string(run.Status)
		if run.ErrorKind != "" {
			status += " (" + run.ErrorKind + ")"
		}
		rows = append(rows, []string{
			shortID(run.ID),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Agent,
			status,
			strconv.Itoa(run.Frames),
			strconv.Itoa(run.Cues),
			strconv.Itoa(run.Warnings),
			run.Duration().Round(time.Millisecond).String(),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]string{"Run", "Started", "Agent", "Status", "Frames", "Cues", "Warnings", "Elapsed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
