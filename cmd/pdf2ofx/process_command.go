package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"pdf2ofx/internal/console"
	"pdf2ofx/internal/extraction"
	"pdf2ofx/internal/runner"
	"pdf2ofx/internal/stage"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "process <pdf|directory>...",
		Short: "Extract, review and emit OFX for one or more statements",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := collectDocuments(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				return errors.New("no PDF documents found in the given paths")
			}

			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			extractor, err := extraction.NewGemini(cmd.Context(), env.cfg.Extraction, env.logger)
			if err != nil {
				return err
			}

			run := runner.New(runner.Deps{
				Config:      env.cfg,
				Store:       env.store,
				Ledger:      env.ledger,
				Extractor:   extractor,
				Prompter:    env.prompter,
				Interactive: env.prompter.Interactive(),
				Logger:      env.logger,
			})

			report, err := run.ProcessBatch(cmd.Context(), paths)
			printBatchReport(cmd, report)
			if errors.Is(err, stage.ErrAborted) {
				fmt.Fprintln(cmd.OutOrStdout(), "Aborted; staging artifacts were kept.")
				return nil
			}
			return err
		},
	}
}

// collectDocuments expands directory arguments into the PDFs they contain.
// Explicit file arguments are taken as-is so an unusual extension can still
// be processed on request.
func collectDocuments(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
				paths = append(paths, filepath.Join(arg, entry.Name()))
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func printBatchReport(cmd *cobra.Command, report runner.BatchReport) {
	out := cmd.OutOrStdout()
	if len(report.Outcomes) == 0 {
		return
	}

	rows := make([][]string, 0, len(report.Outcomes))
	var accepted, skipped, failed int
	for _, o := range report.Outcomes {
		status := "skipped"
		detail := ""
		switch {
		case o.Err != nil && errors.Is(o.Err, stage.ErrAborted):
			status = "aborted"
		case o.Err != nil:
			status = "failed"
			failure := stage.AsFailure(o.Err, stage.Preflight)
			detail = failure.Message
			failed++
		case o.Accepted:
			status = "accepted"
			detail = o.OFXPath
			accepted++
		default:
			detail = string(o.Result.Reconciliation)
			skipped++
		}
		rows = append(rows, []string{o.Name, status, o.Result.QualityLabel, detail})
	}

	fmt.Fprintln(out, console.RenderTable("Batch",
		[]string{"Statement", "Status", "Quality", "Detail"},
		rows,
		[]console.Alignment{console.AlignLeft, console.AlignLeft, console.AlignLeft, console.AlignLeft},
	))
	fmt.Fprintf(out, "\n%d accepted, %d skipped, %d failed\n", accepted, skipped, failed)
	if n := len(report.Retention.Deleted); n > 0 {
		fmt.Fprintf(out, "Cleaned staging artifacts for %d statements\n", n)
	}
	if n := len(report.Retention.Retained); n > 0 {
		fmt.Fprintf(out, "Retained staging artifacts for %d statements:\n", n)
		for _, r := range report.Retention.Retained {
			fmt.Fprintf(out, "  %s (%s): %s\n", r.Name, r.Slug, r.Reason)
		}
	}
	for _, e := range report.Retention.Errors {
		fmt.Fprintf(out, "  Cleanup error: %s: %v\n", e.Path, e.Error)
	}
}
