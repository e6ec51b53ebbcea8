package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"sortbox/internal/category"
	"sortbox/internal/classify"
	"sortbox/internal/config"
)

type classifyResult struct {
	Path     string         `json:"path"`
	Kind     string         `json:"kind"`
	Category category.ID    `json:"category,omitempty"`
	Files    int            `json:"files,omitempty"`
	Tally    map[string]int `json:"tally,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "classify <path>...",
		Short: "Show the category a file or folder would be sorted into",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := cfg.CategoryTable()
			if err != nil {
				return err
			}
			classifier := classify.New(table)

			results := make([]classifyResult, 0, len(args))
			for _, arg := range args {
				results = append(results, classifyPath(table, classifier, arg))
			}
			if jsonOut {
				return writeJSON(cmd, results)
			}

			out := cmd.OutOrStdout()
			for _, res := range results {
				if res.Error != "" {
					fmt.Fprintf(out, "%s: error: %s\n", res.Path, res.Error)
					continue
				}
				fmt.Fprintf(out, "%s: %s (%s)\n", res.Path, res.Category, res.Kind)
				if res.Kind == "folder" && res.Files > 0 {
					fmt.Fprintf(out, "%s%d files: %s\n", statusIndent, res.Files, formatTally(res.Tally))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}

func classifyPath(table *category.Table, classifier *classify.Classifier, arg string) classifyResult {
	path, err := config.ExpandPath(arg)
	if err != nil {
		return classifyResult{Path: arg, Error: err.Error()}
	}
	res := classifyResult{Path: path}
	info, err := os.Lstat(path)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	switch mode := info.Mode(); {
	case mode.IsRegular():
		res.Kind = "file"
		res.Category = table.ForName(info.Name())
	case mode.IsDir():
		res.Kind = "folder"
		tally, err := classifier.Tally(path)
		if err != nil {
			res.Error = err.Error()
			return res
		}
		res.Category = tally.Winner()
		res.Files = tally.Files
		res.Tally = make(map[string]int, len(tally.Counts))
		for id, count := range tally.Counts {
			res.Tally[id.String()] = count
		}
	default:
		res.Kind = "other"
		res.Error = "symlinks and special files are never sorted"
	}
	return res
}

// formatTally lists counts largest first, ties by name.
func formatTally(tally map[string]int) string {
	counts := classify.Tally{Counts: make(map[category.ID]int, len(tally))}
	for name, n := range tally {
		counts.Counts[category.ID(name)] = n
	}
	parts := make([]string, 0, len(tally))
	for _, id := range counts.Ranked() {
		parts = append(parts, fmt.Sprintf("%s=%d", id, counts.Counts[id]))
	}
	return strings.Join(parts, ", ")
}
