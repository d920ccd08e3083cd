package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

var applyCmd = &cobra.Command{
	Use:   "apply [packages...]",
	Short: "Install each source's missing packages",
	Long: `Apply computes each available source's missing packages and
executes one composed install invocation per source, in parallel. Use
"santa plan" first to review the commands without running them.`,
	RunE: runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApply(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	desired := args
	if len(desired) == 0 {
		desired = env.resolved.PackageOrder
	}

	ctx := context.Background()
	status := env.planner.Status(ctx, env.resolved, desired)

	missing := map[string][]string{}
	for _, name := range env.resolved.SourceOrder {
		entry, ok := status.Entries[name]
		if ok && entry.Available && len(entry.Missing) > 0 {
			missing[name] = entry.Missing
		}
	}

	outcomes := env.planner.Install(ctx, env.resolved, missing, env.composer, true)

	out := cmd.OutOrStdout()
	var failed []string
	for name, outcome := range outcomes {
		if outcome.Err != nil {
			fmt.Fprintf(out, "%s: failed: %s\n", name, outcome.Err.Error())
			failed = append(failed, name)
			continue
		}
		fmt.Fprintf(out, "%s: installed\n", name)
	}

	if len(failed) > 0 {
		return domainerr.New(domainerr.KindCommandFailed, fmt.Sprintf("install failed for %d source(s)", len(failed))).
			WithContext(fmt.Sprintf("%v", failed))
	}
	return nil
}
