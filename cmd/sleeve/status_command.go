package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sleeve/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the registry state from the last run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := queue.Open(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			items, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "Registry is empty. Run `sleeve run <worklist.csv>` first.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				if !all && item.Status == queue.StatusSaved {
					continue
				}
				detail := item.SavedPath
				if item.Status == queue.StatusFailed {
					detail = item.ErrorMessage
				}
				year := "NA"
				if item.Year != 0 {
					year = strconv.Itoa(item.Year)
				}
				rows = append(rows, []string{
					strconv.Itoa(item.RowIndex),
					string(item.Status),
					item.Genre,
					item.Label(),
					year,
					detail,
				})
			}
			if len(rows) == 0 {
				fmt.Fprintln(out, "All items saved. Use --all to list them.")
			} else {
				headers := []string{"Row", "Status", "Genre", "Album", "Year", "Detail"}
				aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
				fmt.Fprintln(out, renderTable(headers, rows, aligns))
			}

			counts, err := store.CountByStatus(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d items", len(items))
			for _, status := range []queue.Status{
				queue.StatusSaved, queue.StatusExists, queue.StatusSkipped,
				queue.StatusNotFound, queue.StatusFailed, queue.StatusPending,
			} {
				if counts[status] > 0 {
					fmt.Fprintf(out, ", %d %s", counts[status], status)
				}
			}
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include saved items in the listing")
	return cmd
}
