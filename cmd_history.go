package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"pysetup/internal/history"
	"pysetup/internal/ui"
)

func historyCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent setup runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(opts.historyPath)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Muted("No runs recorded."))
				return nil
			}
			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{r.ID, r.Target, formatTime(r.Started), formatDuration(r.Started, r.Finished), r.State})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"ID", "TARGET", "STARTED", "DURATION", "STATE"}, rows))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the steps of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := history.Open(opts.historyPath)
			if err != nil {
				return err
			}
			defer store.Close()

			run, err := store.Get(cmd.Context(), args[0])
			if errors.Is(err, history.ErrNotFound) {
				return fmt.Errorf("no run with id %s", args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, ui.KeyValues("",
				ui.KV("Run", run.ID),
				ui.KV("Target", run.Target),
				ui.KV("Started", formatTime(run.Started)),
				ui.KV("Duration", formatDuration(run.Started, run.Finished)),
				ui.KV("State", run.State),
			))
			if len(run.Steps) == 0 {
				return nil
			}
			rows := make([][]string, 0, len(run.Steps))
			for _, s := range run.Steps {
				result := ui.Success("ok")
				if !s.OK {
					result = ui.Warn("failed")
				}
				rows = append(rows, []string{strconv.Itoa(s.Position + 1), s.Label, result, formatDuration(s.Started, s.Finished), s.Reason})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, ui.Table([]string{"#", "STEP", "RESULT", "DURATION", "REASON"}, rows))
			return nil
		},
	}
	cmd.AddCommand(showCmd)
	return cmd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func formatDuration(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return "-"
	}
	return end.Sub(start).Round(100 * time.Millisecond).String()
}
