// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docconv/internal/history"
	"github.com/pdiddy/docconv/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show or export past conversions",
	Long: `History lists conversions recorded in the local SQLite ledger, newest
first. Filter with --kind and --failed. Use --export yaml|json to write the
matching records to stdout instead of a table.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().String("kind", "", "filter by conversion kind")
	historyCmd.Flags().Bool("failed", false, "only failed conversions")
	historyCmd.Flags().Int("limit", 20, "maximum rows to list")
	historyCmd.Flags().String("export", "", "export format: yaml or json")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if !appConfig.History.Enabled {
		return fmt.Errorf("history is disabled (history.enabled=false)")
	}

	var filter history.Filter
	if name, _ := cmd.Flags().GetString("kind"); name != "" {
		kind, err := types.ParseKind(name)
		if err != nil {
			return err
		}
		filter.Kind = kind
	}
	filter.FailedOnly, _ = cmd.Flags().GetBool("failed")
	filter.Limit, _ = cmd.Flags().GetInt("limit")

	store, err := history.Open(appConfig.History.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	if format, _ := cmd.Flags().GetString("export"); format != "" {
		return store.Export(ctx, cmd.OutOrStdout(), filter, history.Format(format))
	}

	records, err := store.List(ctx, filter)
	if err != nil {
		return err
	}
	printHistory(cmd.OutOrStdout(), records)
	return nil
}

func printHistory(w io.Writer, records []history.Record) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No conversions recorded.")
		return
	}

	fmt.Fprintf(w, "%-16s  %-9s  %-6s  %-30s  %s\n", "Finished", "Kind", "Result", "Source", "Detail")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, r := range records {
		result, detail := "ok", r.Output
		if !r.Success {
			result, detail = "failed", r.Reason
		}
		source := filepath.Base(r.Source)
		if len(source) > 30 {
			source = source[:27] + "..."
		}
		fmt.Fprintf(w, "%-16s  %-9s  %-6s  %-30s  %s\n",
			r.FinishedAt.Local().Format("2006-01-02 15:04"), r.Kind, result, source, detail)
	}
	fmt.Fprintf(w, "\n%d conversion(s)\n", len(records))
}
