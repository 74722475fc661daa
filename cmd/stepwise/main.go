// Stepwise runs step-by-step wizards defined in YAML or TOML files.
//
// Every step of a wizard has its own location (base path + step index), so
// the terminal host supports history back/forward and the HTTP host supports
// the browser's address bar, back button and bookmarks.
//
// Usage:
//
//	stepwise [command] [flags]
//
// Running without arguments launches the terminal wizard.
// See 'stepwise --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/stepwise/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "stepwise",
	Short: "Step-by-step wizard runner",
	Long: `Run step-by-step wizards in the terminal or in a browser.

A wizard is a definition file listing ordered steps. Each step lives at its
own location, so history back/forward, direct entry and bookmarks all land on
the right step.

If no command is specified, the terminal wizard will launch automatically.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: run wizard when no subcommand provided
		return runWizard(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("stepwise %s (commit: %s, %s)\n", version.Version, version.Commit, version.Get().GoVersion)
	},
}
