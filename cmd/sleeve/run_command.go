package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sleeve/internal/logging"
	"sleeve/internal/queue"
	"sleeve/internal/worklist"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var (
		limit      int
		noInput    bool
		alwaysAsk  bool
		overwrite  bool
		yearFilter bool
	)

	cmd := &cobra.Command{
		Use:   "run <worklist.csv>",
		Short: "Resolve and download covers for a worklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			rows, err := worklist.ReadFile(args[0], limit)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Worklist has no usable rows.")
				return nil
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := store.SyncRows(runCtx, rows); err != nil {
				return err
			}

			return runPipeline(runCtx, cfg, store, logger, pipelineOptions{
				noInput:   noInput,
				alwaysAsk: alwaysAsk,
				overwrite: overwrite,
				yearMatch: yearFilter,
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most this many worklist rows (0 = all)")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; skip items the policy cannot decide")
	cmd.Flags().BoolVar(&alwaysAsk, "always-ask", false, "Prompt for every item, even confident matches")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace covers that already exist on disk")
	cmd.Flags().BoolVar(&yearFilter, "year-filter", true, "Drop candidates whose year is outside the tolerance")
	return cmd
}
