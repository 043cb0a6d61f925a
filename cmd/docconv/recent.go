// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docconv/internal/recent"
)

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently converted files",
	Long: `Recent prints the most recently selected source files, newest first.
Use --clear to empty the list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := recent.Load(appConfig.Recent.Path, appConfig.Recent.Max)
		if err != nil {
			return err
		}

		if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
			list.Clear()
			if err := list.Save(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Recent files cleared.")
			return nil
		}

		entries := list.Entries()
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No recent files.")
			return nil
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-30s  %s\n",
				e.Timestamp.Local().Format("2006-01-02 15:04"), e.DisplayName, e.Path)
		}
		return nil
	},
}

func init() {
	recentCmd.Flags().Bool("clear", false, "empty the recent files list")
	rootCmd.AddCommand(recentCmd)
}
