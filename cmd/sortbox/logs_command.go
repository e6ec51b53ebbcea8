package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sortbox/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var dispatchID string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show the current watch session log",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(cfg.Paths.LogDir, "sortbox.log")
			var filter logs.Filter
			if dispatchID != "" {
				filter = logs.Filter{dispatchID}
			}

			window, err := logs.Last(path, lines, filter)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range window.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				if len(window.Lines) == 0 {
					fmt.Fprintf(out, "No log lines at %s\n", path)
				}
				return nil
			}

			err = logs.Follow(cmd.Context(), path, window.Offset, 250*time.Millisecond, filter, func(line string) {
				fmt.Fprintln(out, line)
			})
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of trailing lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines until interrupted")
	cmd.Flags().StringVar(&dispatchID, "dispatch", "", "Only show lines mentioning this dispatch ID")
	return cmd
}
