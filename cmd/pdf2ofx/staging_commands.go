package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pdf2ofx/internal/artifacts"
	"pdf2ofx/internal/console"
)

func newStagingCommand(ctx *commandContext) *cobra.Command {
	stagingCmd := &cobra.Command{
		Use:   "staging",
		Short: "Manage staging artifacts",
	}

	stagingCmd.AddCommand(newStagingListCommand(ctx))
	stagingCmd.AddCommand(newStagingCleanCommand(ctx))

	return stagingCmd
}

func newStagingListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List staged statement artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := artifacts.NewStore(cfg.Paths.StagingDir)
			if err != nil {
				return err
			}

			slugs, err := store.Slugs()
			if err != nil {
				return fmt.Errorf("list staging artifacts: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(slugs) == 0 {
				fmt.Fprintln(out, "No staging artifacts found")
				return nil
			}

			rows := make([][]string, 0, len(slugs))
			for _, slug := range slugs {
				meta, err := store.ReadMeta(slug)
				if err != nil {
					rows = append(rows, []string{slug, "", "", fmt.Sprintf("sidecar unreadable: %v", err)})
					continue
				}
				detail := ""
				switch {
				case meta.ForcedAccept:
					detail = "forced accept"
				case meta.Skipped:
					detail = "skipped"
				}
				rows = append(rows, []string{slug, meta.Name, meta.Status, detail})
			}
			fmt.Fprintf(out, "Staging directory: %s\n\n", cfg.Paths.StagingDir)
			fmt.Fprintln(out, console.RenderTable("Artifacts",
				[]string{"Slug", "Statement", "Status", "Notes"},
				rows,
				[]console.Alignment{console.AlignLeft, console.AlignLeft, console.AlignLeft, console.AlignLeft},
			))
			return nil
		},
	}
}

func newStagingCleanCommand(ctx *commandContext) *cobra.Command {
	var maxAgeDays int

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale staging artifacts",
		Long: `Remove staging artifacts older than the retention window. Artifacts
kept for recovery stay in place until they age out or are cleaned here.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			days := maxAgeDays
			if days <= 0 {
				days = cfg.Retention.StaleAfterDays
			}
			maxAge := time.Duration(days) * 24 * time.Hour

			result := artifacts.SweepStale(cfg.Paths.StagingDir, maxAge, logger)
			out := cmd.OutOrStdout()
			if len(result.Removed) == 0 && len(result.Errors) == 0 {
				fmt.Fprintf(out, "No artifacts older than %dd to clean\n", days)
				return nil
			}
			fmt.Fprintf(out, "Removed %d stale artifacts\n", len(result.Removed))
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  Error: %s: %v\n", e.Path, e.Error)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxAgeDays, "max-age", 0, "Override the retention window in days")
	return cmd
}
