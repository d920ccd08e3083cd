package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [packages...]",
	Short: "Show which desired packages are missing per source",
	Long: `Status resolves configuration and reports each enabled source's
missing and extra packages relative to the desired set (the packages named
on the command line, or every package in the resolved configuration if none
are given). A source whose package manager isn't present on PATH is still
listed, marked unavailable, rather than silently dropped.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	desired := args
	if len(desired) == 0 {
		desired = env.resolved.PackageOrder
	}

	result := env.planner.Status(context.Background(), env.resolved, desired)

	out := cmd.OutOrStdout()
	for _, name := range env.resolved.SourceOrder {
		entry, ok := result.Entries[name]
		if !ok {
			continue
		}
		if !entry.Available {
			fmt.Fprintf(out, "%s: unavailable (%s)\n", name, entry.Warning)
			continue
		}
		fmt.Fprintf(out, "%s: %d missing, %d extra\n", name, len(entry.Missing), len(entry.Extra))
		for _, pkg := range entry.Missing {
			fmt.Fprintf(out, "  - %s\n", pkg)
		}
	}
	if result.Cancelled {
		fmt.Fprintln(out, "(status check was cancelled before every source completed)")
	}
	return nil
}
