package main

import (
	"github.com/spf13/cobra"

	"sortbox/internal/daemonrun"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var sweep bool
	var diagnostic bool
	var development bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the download folder and sort new entries until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				LogLevel:    ctx.logLevel(),
				Development: development,
				Diagnostic:  diagnostic,
				Sweep:       sweep,
			})
		},
	}

	cmd.Flags().BoolVar(&sweep, "sweep", false, "Sort entries already present before watching")
	cmd.Flags().BoolVar(&diagnostic, "diagnostic", false, "Also write a debug-level JSON log under log_dir/debug")
	cmd.Flags().BoolVar(&development, "dev", false, "Include source locations in log output")
	return cmd
}
