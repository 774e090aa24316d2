package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"stravagpx/internal/config"
	"stravagpx/internal/history"
	"stravagpx/internal/logging"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent export runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ctx.configPath()
			if err != nil {
				return err
			}
			doc, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			historyPath, err := doc.HistoryPath()
			if err != nil {
				return fmt.Errorf("resolve history path: %w", err)
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(historyPath); errors.Is(err, fs.ErrNotExist) {
				if !doc.History.Enabled {
					fmt.Fprintln(out, "Run history is disabled (set history.enabled in the configuration)")
				} else {
					fmt.Fprintln(out, "No runs recorded yet")
				}
				return nil
			}

			journal, err := history.Open(cmd.Context(), historyPath, logging.NewNop())
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer journal.Close()

			if id := strings.TrimSpace(runID); id != "" {
				return renderRunOutcomes(cmd, journal, id)
			}

			runs, err := journal.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.ID,
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					runDuration(run),
					dashIfEmpty(run.SportFilter),
					strconv.Itoa(run.Report.Exported),
					strconv.Itoa(run.Report.AlreadyExported),
					strconv.Itoa(run.Report.Filtered),
					strconv.Itoa(run.Report.Failed),
					runResult(run),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Run", "Started", "Duration", "Filter", "Exported", "Skipped", "Filtered", "Failed", "Result"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show the per-activity outcomes of one run")
	return cmd
}

func renderRunOutcomes(cmd *cobra.Command, journal *history.Journal, runID string) error {
	outcomes, err := journal.Outcomes(cmd.Context(), runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(outcomes) == 0 {
		fmt.Fprintf(out, "No outcomes recorded for run %s\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(outcomes))
	for _, o := range outcomes {
		detail := o.Path
		if o.Error != "" {
			detail = o.Error
		}
		rows = append(rows, []string{
			strconv.FormatInt(o.ActivityID, 10),
			o.Name,
			dashIfEmpty(o.SportType),
			string(o.Status),
			dashIfEmpty(detail),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"ID", "Name", "Sport", "Status", "Detail"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft}))
	return nil
}

func runDuration(run history.RunSummary) string {
	if !run.Finished() {
		return "-"
	}
	return run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
}

func runResult(run history.RunSummary) string {
	switch {
	case !run.Finished():
		return "interrupted"
	case run.Error != "":
		return "error: " + run.Error
	default:
		return "ok"
	}
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
