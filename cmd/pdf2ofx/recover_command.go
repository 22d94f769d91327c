package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"pdf2ofx/internal/recovery"
	"pdf2ofx/internal/runner"
	"pdf2ofx/internal/stage"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recover",
		Short: "Re-review statements from staged raw artifacts",
		Long: `Reconstruct statements from raw extraction artifacts in the staging
directory and run them through review again. No extraction provider is
contacted; the raw payloads already on disk are the only input.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := ctx.openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			if !env.prompter.Interactive() {
				return errors.New("recover requires an interactive terminal")
			}

			run := runner.New(runner.Deps{
				Config:      env.cfg,
				Store:       env.store,
				Ledger:      env.ledger,
				Prompter:    env.prompter,
				Interactive: true,
				Logger:      env.logger,
			})
			manager := recovery.New(env.cfg, env.store, env.ledger, run, env.prompter, env.logger)

			if err := manager.Run(cmd.Context()); err != nil {
				if errors.Is(err, stage.ErrAborted) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted; staging artifacts were kept.")
					return nil
				}
				return err
			}
			return nil
		},
	}
}
