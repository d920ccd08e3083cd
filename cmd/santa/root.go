package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/santa/internal/domainerr"
)

var (
	cfgFile     string
	verbose     bool
	builtinOnly bool
)

var rootCmd = &cobra.Command{
	Use:   "santa",
	Short: "A cross-platform package-manager orchestrator",
	Long: `Santa resolves layered source/package configuration written in CCL
and drives package managers across platforms: checking status, composing
re-runnable install scripts, and applying them.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to a config.ccl layer (overrides SANTA_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging")
	rootCmd.PersistentFlags().BoolVar(&builtinOnly, "builtin-only", false, "skip user and project configuration layers")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns a process exit code per the
// exit-code table: 0 ok, 1 generic failure, 2 usage error, 3 config
// validation failure, 4 security violation, 5 subprocess timeout.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	printError(err)
	return exitCodeFor(err)
}

func exitCodeFor(err error) int {
	switch domainerr.Category(err) {
	case domainerr.KindConfig, domainerr.KindParse, domainerr.KindValidation, domainerr.KindPackageSource:
		return 3
	case domainerr.KindSecurity:
		return 4
	case domainerr.KindTimeout:
		return 5
	case domainerr.KindCommandFailed, domainerr.KindIO, domainerr.KindCache, domainerr.KindCancelled:
		return 1
	default:
		// Not a domainerr.Error at all: cobra flag/argument parsing errors
		// and similar CLI-surface mistakes land here.
		return 2
	}
}

func printError(err error) {
	var derr *domainerr.Error
	if !errors.As(err, &derr) {
		derr = nil
	}
	if derr == nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		return
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Error: %s\n", derr.Format())
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", derr.Error())
	if derr.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Suggestion: %s\n", derr.Suggestion)
	}
}
