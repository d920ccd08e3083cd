package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/santa/internal/compose"
	"github.com/felixgeelhaar/santa/internal/domain/pkgsource"
	"github.com/felixgeelhaar/santa/internal/domain/script"
	"github.com/felixgeelhaar/santa/internal/domainerr"
	"github.com/felixgeelhaar/santa/internal/ports"
)

var planOutputDir string

var planCmd = &cobra.Command{
	Use:   "plan [packages...]",
	Short: "Generate re-runnable install scripts without executing them",
	Long: `Plan computes each available source's missing packages and writes
one re-runnable install script per source to the output directory
(SANTA_OUTPUT_DIR, the runtime.output_dir configuration, or
~/.santa/scripts). Nothing is executed.`,
	RunE: runPlan,
}

func init() {
	rootCmd.AddCommand(planCmd)
	planCmd.Flags().StringVar(&planOutputDir, "output-dir", "", "directory to write generated scripts to")
}

func runPlan(cmd *cobra.Command, args []string) error {
	env, err := buildEnvironment()
	if err != nil {
		return err
	}

	desired := args
	if len(desired) == 0 {
		desired = env.resolved.PackageOrder
	}

	status := env.planner.Status(context.Background(), env.resolved, desired)

	outDir := planOutputDir
	if outDir == "" {
		outDir = env.resolved.Runtime.OutputDir
	}
	outDir = ports.ExpandPath(outDir)
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return domainerr.New(domainerr.KindIO, "failed to create script output directory").
			WithContext(outDir).WithUnderlying(err)
	}

	out := cmd.OutOrStdout()
	format := scriptFormat(env.resolved)
	generatedAt := time.Now()
	runID := uuid.New().String()

	for _, name := range env.resolved.SourceOrder {
		entry, ok := status.Entries[name]
		if !ok || !entry.Available || len(entry.Missing) == 0 {
			continue
		}
		src := env.resolved.Sources[name]
		pkgs := resolvePackages(env.resolved.Packages, entry.Missing)

		content, err := script.Generate(script.Request{
			Operation:     compose.OperationInstall,
			Source:        src,
			Packages:      pkgs,
			Format:        format,
			SchemaVersion: pkgsource.DefaultSchemaVersion,
			RunID:         runID,
			GeneratedAt:   generatedAt,
		})
		if err != nil {
			return err
		}

		filename := script.OutputFilename(compose.OperationInstall, name, generatedAt, format)
		path := filepath.Join(outDir, filename)
		if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
			return domainerr.New(domainerr.KindIO, "failed to write generated script").
				WithContext(path).WithUnderlying(err)
		}
		fmt.Fprintf(out, "%s: wrote %s (%d packages)\n", name, path, len(pkgs))
	}

	return nil
}

// resolvePackages turns a list of package names into pkgsource.Package
// records, falling back to a bare record (no overrides) for a name the
// resolved configuration never declared an entry for.
func resolvePackages(known map[string]pkgsource.Package, names []string) []pkgsource.Package {
	out := make([]pkgsource.Package, 0, len(names))
	for _, name := range names {
		if pkg, ok := known[name]; ok {
			out = append(out, pkg)
			continue
		}
		out = append(out, pkgsource.Package{Name: name, Overrides: map[string]pkgsource.PackageOverride{}})
	}
	return out
}
