package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"pdf2ofx/internal/console"
	"pdf2ofx/internal/ledger"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs and their statement outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ledger.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			if runID != "" {
				return printRunRecords(cmd, store, runID)
			}
			return printRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show statement records for one run")
	return cmd
}

func printRuns(cmd *cobra.Command, store *ledger.Store, limit int) error {
	runs, err := store.History(cmd.Context(), limit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		finished := "running"
		if run.FinishedAt != nil {
			finished = run.FinishedAt.Local().Format("2006-01-02 15:04")
		}
		rows = append(rows, []string{
			run.RunID[:8],
			run.Kind,
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			finished,
			fmt.Sprintf("%d", run.Documents),
			fmt.Sprintf("%d", run.Accepted),
			fmt.Sprintf("%d", run.Skipped),
			fmt.Sprintf("%d", run.Failed),
		})
	}
	fmt.Fprintln(out, console.RenderTable("Runs",
		[]string{"Run", "Kind", "Started", "Finished", "Docs", "Accepted", "Skipped", "Failed"},
		rows,
		[]console.Alignment{
			console.AlignLeft, console.AlignLeft, console.AlignLeft, console.AlignLeft,
			console.AlignRight, console.AlignRight, console.AlignRight, console.AlignRight,
		},
	))
	fmt.Fprintln(out, "\nUse --run <id> for statement details")
	return nil
}

func printRunRecords(cmd *cobra.Command, store *ledger.Store, runID string) error {
	records, err := store.RunRecords(cmd.Context(), runID)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintf(out, "No records for run %s\n", runID)
		return nil
	}

	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		detail := rec.OFXPath
		if rec.FailureStage != "" {
			detail = fmt.Sprintf("%s: %s", rec.FailureStage, rec.FailureMessage)
		} else if rec.Skipped {
			detail = "skipped"
		}
		rows = append(rows, []string{
			rec.Name,
			rec.Status,
			rec.QualityLabel,
			fmt.Sprintf("%d", rec.Transactions),
			flags(rec),
			detail,
		})
	}
	fmt.Fprintln(out, console.RenderTable(fmt.Sprintf("Run %s", runID),
		[]string{"Statement", "Status", "Quality", "Txns", "Flags", "Detail"},
		rows,
		[]console.Alignment{
			console.AlignLeft, console.AlignLeft, console.AlignLeft,
			console.AlignRight, console.AlignLeft, console.AlignLeft,
		},
	))
	return nil
}

func flags(rec ledger.Record) string {
	switch {
	case rec.ForcedAccept:
		return "forced"
	case rec.Skipped:
		return "skip"
	default:
		return ""
	}
}
