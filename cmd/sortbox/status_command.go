package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sortbox/internal/config"
	"sortbox/internal/daemon"
	"sortbox/internal/history"
)

type statusSummary struct {
	ConfigPath     string                  `json:"config_path"`
	WatchDir       string                  `json:"watch_dir"`
	WatchDirOK     bool                    `json:"watch_dir_ok"`
	DestinationDir string                  `json:"destination_dir"`
	Watching       bool                    `json:"watching"`
	PID            string                  `json:"pid,omitempty"`
	LockFile       string                  `json:"lock_file"`
	History        []history.CategoryCount `json:"history,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show whether a watch session is running and what has been sorted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			summary, err := collectStatus(cmd, ctx, cfg)
			if err != nil {
				return err
			}
			if jsonOut {
				return writeJSON(cmd, summary)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			for _, line := range renderSectionHeader("sortbox", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderStatusLine("Config", statusInfo, summary.ConfigPath, colorize))
			watchKind := statusOK
			if !summary.WatchDirOK {
				watchKind = statusError
			}
			fmt.Fprintln(out, renderStatusLine("Watch folder", watchKind, summary.WatchDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Destination", statusInfo, summary.DestinationDir, colorize))
			if summary.Watching {
				msg := "running"
				if summary.PID != "" {
					msg += " (pid " + summary.PID + ")"
				}
				fmt.Fprintln(out, renderStatusLine("Watch session", statusOK, msg, colorize))
			} else {
				fmt.Fprintln(out, renderStatusLine("Watch session", statusWarn, "not running", colorize))
			}
			if cfg.History.Enabled {
				total := 0
				for _, row := range summary.History {
					total += row.Count
				}
				fmt.Fprintln(out, renderStatusLine("History", statusInfo, fmt.Sprintf("%d entries sorted", total), colorize))
				for _, row := range summary.History {
					fmt.Fprintf(out, "%s  %-*s %d\n", statusIndent, statusLabelWidth, row.Category, row.Count)
				}
			} else {
				fmt.Fprintln(out, renderStatusLine("History", statusInfo, "disabled", colorize))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func collectStatus(cmd *cobra.Command, ctx *commandContext, cfg *config.Config) (statusSummary, error) {
	summary := statusSummary{
		ConfigPath:     ctx.configPath,
		WatchDir:       cfg.Paths.WatchDir,
		DestinationDir: cfg.Paths.DestinationDir,
		LockFile:       daemon.LockPath(cfg),
	}
	if info, err := os.Stat(cfg.Paths.WatchDir); err == nil && info.IsDir() {
		summary.WatchDirOK = true
	}

	lock, err := daemon.TryLockRoot(cfg)
	switch {
	case errors.Is(err, daemon.ErrRootLocked):
		summary.Watching = true
		if data, readErr := os.ReadFile(cfg.PIDPath()); readErr == nil {
			summary.PID = strings.TrimSpace(string(data))
		}
	case err != nil:
		return summary, err
	default:
		_ = lock.Unlock()
	}

	store, err := ctx.openHistory(cfg)
	if err != nil {
		return summary, err
	}
	if store != nil {
		defer store.Close()
		counts, err := store.CountByCategory(cmd.Context())
		if err != nil {
			return summary, err
		}
		summary.History = counts
	}
	return summary, nil
}
