package main

import (
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"sleeve/internal/logging"
	"sleeve/internal/queue"
)

func newRedoCommand(ctx *commandContext) *cobra.Command {
	var (
		rows       []int
		statuses   []string
		noInput    bool
		alwaysAsk  bool
		overwrite  bool
		yearFilter bool
	)

	cmd := &cobra.Command{
		Use:   "redo",
		Short: "Re-run failed, skipped, or not-found items from the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			var items []*queue.Item
			if len(rows) > 0 {
				items, err = store.ItemsByRowIndexes(runCtx, rows...)
			} else {
				wanted := queue.RedoableStatuses
				if len(statuses) > 0 {
					wanted = make([]queue.Status, 0, len(statuses))
					for _, raw := range statuses {
						status, parseErr := queue.ParseStatus(raw)
						if parseErr != nil {
							return parseErr
						}
						wanted = append(wanted, status)
					}
				}
				items, err = store.ItemsByStatuses(runCtx, wanted...)
			}
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to redo.")
				return nil
			}

			ids := make([]int64, 0, len(items))
			labels := make([]string, 0, len(items))
			for _, item := range items {
				ids = append(ids, item.ID)
				labels = append(labels, item.Label())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Redoing %d items: %s\n", len(ids), strings.Join(labels, ", "))

			if err := store.ResetForRedo(runCtx, ids...); err != nil {
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

	cmd.Flags().IntSliceVar(&rows, "rows", nil, "Redo specific worklist row numbers")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "Redo items in these statuses (default: failed, skipped, not_found)")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; skip items the policy cannot decide")
	cmd.Flags().BoolVar(&alwaysAsk, "always-ask", false, "Prompt for every item, even confident matches")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace covers that already exist on disk")
	cmd.Flags().BoolVar(&yearFilter, "year-filter", true, "Drop candidates whose year is outside the tolerance")
	return cmd
}
