package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"sortbox/internal/daemon"
	"sortbox/internal/dispatch"
)

type organizeResult struct {
	DryRun     bool               `json:"dry_run"`
	Plan       []dispatch.Planned `json:"plan,omitempty"`
	DispatchID string             `json:"dispatch_id,omitempty"`
	Moved      int                `json:"moved"`
	Skipped    int                `json:"skipped"`
	Failed     int                `json:"failed"`
}

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var yes bool
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Sort everything currently in the watch folder once",
		Long: "Sort everything currently in the watch folder once.\n\n" +
			"Without --yes the plan is printed and nothing is moved.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.commandLogger(cfg)
			if err != nil {
				return err
			}

			lock, err := daemon.TryLockRoot(cfg)
			if err != nil {
				if errors.Is(err, daemon.ErrRootLocked) {
					return fmt.Errorf("%w; stop the running `sortbox watch` first", err)
				}
				return err
			}
			defer lock.Unlock() //nolint:errcheck

			apply := yes && !dryRun
			store, err := ctx.openHistory(cfg)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
			}

			var journal dispatch.Journal
			if store != nil && apply {
				journal = store
			}
			dispatcher, err := dispatch.NewFromConfig(cfg, journal, logger)
			if err != nil {
				return err
			}

			plan, err := dispatcher.Plan(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !apply {
				if jsonOut {
					return writeJSON(cmd, organizeResult{DryRun: true, Plan: plan})
				}
				printPlan(out, plan, dispatcher.WatchDir())
				if !dryRun {
					fmt.Fprintln(out, "Nothing moved. Rerun with --yes to apply this plan.")
				}
				return nil
			}

			report, err := dispatcher.Sweep(cmd.Context())
			if err != nil {
				return err
			}
			result := organizeResult{
				DispatchID: report.DispatchID,
				Moved:      len(report.Moved),
				Skipped:    len(report.Skipped),
				Failed:     len(report.Failed),
			}
			if jsonOut {
				return writeJSON(cmd, result)
			}
			printReport(out, report, shouldColorize(out))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the plan without moving anything")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Apply the plan")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func printPlan(out io.Writer, plan []dispatch.Planned, watchDir string) {
	if len(plan) == 0 {
		fmt.Fprintln(out, "Watch folder is already tidy.")
		return
	}
	view := newTable(60, "Entry", "Kind", "Category", "Destination")
	sortable := 0
	for _, item := range plan {
		target := item.DestinationDir
		if item.Skip != "" {
			target = "skip: " + item.Skip
		} else {
			sortable++
		}
		view.add(relativeTo(watchDir, item.Source), string(item.Kind), item.Category.String(), target)
	}
	fmt.Fprint(out, view)
	fmt.Fprintf(out, "\n%d of %d entries would be sorted.\n", sortable, len(plan))
}

func printReport(out io.Writer, report dispatch.Report, colorize bool) {
	for _, line := range renderSectionHeader("Organize", colorize) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, renderStatusLine("Moved", statusOK, fmt.Sprintf("%d", len(report.Moved)), colorize))
	fmt.Fprintln(out, renderStatusLine("Skipped", statusInfo, fmt.Sprintf("%d", len(report.Skipped)), colorize))
	failedKind := statusOK
	if len(report.Failed) > 0 {
		failedKind = statusError
	}
	fmt.Fprintln(out, renderStatusLine("Failed", failedKind, fmt.Sprintf("%d", len(report.Failed)), colorize))
	for _, outcome := range report.Failed {
		fmt.Fprintf(out, "%s- %s: %v\n", statusIndent, filepath.Base(outcome.Source), outcome.Err)
	}
}

func relativeTo(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
