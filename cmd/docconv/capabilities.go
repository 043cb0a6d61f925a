// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docconv/internal/capability"
	"github.com/pdiddy/docconv/internal/toolchain"
	"github.com/pdiddy/docconv/pkg/types"
)

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show which conversions are available on this machine",
	Long: `Capabilities probes for the external tools behind each conversion and
prints which capabilities were found, where, and which conversion kinds are
enabled as a result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		caps := capability.Detect(appConfig.Convert, toolchain.NewRunner())
		printCapabilities(cmd.OutOrStdout(), caps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

func printCapabilities(w io.Writer, caps capability.Set) {
	fmt.Fprintf(w, "%-22s  %-9s  %s\n", "Capability", "Status", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, c := range capability.All {
		status, source := "available", capability.Hint(c)
		if bin := caps.Binary(c); bin != "" {
			source = bin
		}
		if !caps.Has(c) {
			status = "missing"
			source = "install " + capability.Hint(c)
		}
		fmt.Fprintf(w, "%-22s  %-9s  %s\n", c, status, source)
	}

	fmt.Fprintln(w)
	for _, k := range types.Kinds {
		state := "enabled"
		if !caps.Supports(k) {
			state = "disabled"
		}
		fmt.Fprintf(w, "%-10s  %-13s  %-8s  %s\n", k, k.Title(), state, needs(k))
	}
}

// needs lists the capabilities behind kind.
func needs(k types.Kind) string {
	reqs := capability.Requirements(k)
	if len(reqs) == 0 {
		return "no converter available"
	}
	names := make([]string, len(reqs))
	for i, c := range reqs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}
