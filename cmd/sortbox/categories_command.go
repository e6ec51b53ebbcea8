package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the effective extension to category table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			table, err := cfg.CategoryTable()
			if err != nil {
				return err
			}
			entries := table.Entries()
			if jsonOut {
				return writeJSON(cmd, entries)
			}

			grouped := map[string][]string{}
			for _, entry := range entries {
				key := entry.Category.String()
				grouped[key] = append(grouped[key], entry.Extension)
			}
			view := newTable(70, "Category", "Count", "Extensions").alignRight(1)
			shown := 0
			for _, id := range table.Categories() {
				exts, ok := grouped[id.String()]
				if !ok {
					continue
				}
				view.add(id.String(), strconv.Itoa(len(exts)), strings.Join(exts, " "))
				shown++
			}
			out := cmd.OutOrStdout()
			fmt.Fprint(out, view)
			fmt.Fprintf(out, "\n%d extensions in %d categories; anything else goes to uncategorized.\n", table.Len(), shown)
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")
	return cmd
}
