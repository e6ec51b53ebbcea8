package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sortbox/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var dispatchID string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently sorted entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return errHistoryDisabled
			}
			defer store.Close()

			var entries []history.Entry
			if dispatchID != "" {
				entries, err = store.ByDispatch(cmd.Context(), dispatchID)
			} else {
				entries, err = store.Recent(cmd.Context(), limit)
			}
			if err != nil {
				return err
			}
			if jsonOut {
				if entries == nil {
					entries = []history.Entry{}
				}
				return writeJSON(cmd, entries)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No history yet.")
				return nil
			}
			colorize := shouldColorize(out)
			view := newTable(60, "When", "Status", "Category", "Entry", "Result")
			for _, entry := range entries {
				result := entry.Destination
				if entry.Status != history.StatusMoved && entry.Error != "" {
					result = entry.Error
				}
				view.add(
					entry.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					colorizeStatus(entry.Status, colorize),
					entry.Category,
					filepath.Base(entry.Source),
					result,
				)
			}
			fmt.Fprint(out, view)
			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.AddCommand(newHistoryPruneCommand(ctx))
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of entries to show (0 for all)")
	cmd.Flags().StringVar(&dispatchID, "dispatch", "", "Show every entry from one dispatch pass")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func newHistoryPruneCommand(ctx *commandContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete history entries older than --days",
		RunE: func(cmd *cobra.Command, args []string) error {
			if days <= 0 {
				return errors.New("--days must be positive")
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			if store == nil {
				return errHistoryDisabled
			}
			defer store.Close()

			cutoff := time.Now().AddDate(0, 0, -days)
			removed, err := store.PruneBefore(cmd.Context(), cutoff)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %s\n", removed, cutoff.Format("2006-01-02"))
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 90, "Keep entries newer than this many days")
	return cmd
}
