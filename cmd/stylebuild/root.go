// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/invowk/stylebuild/pkg/types"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// newRootCommand builds the command tree around app.
func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stylebuild",
		Short: "Compile SCSS stylesheets with load path resolution",
		Long: TitleStyle.Render("stylebuild") + SubtitleStyle.Render(" - Compile SCSS stylesheets with load path resolution") + `

stylebuild compiles every stylesheet of a project into CSS. Imports are
looked up next to the importing file first and then in each configured
load path, in order. Partials (files starting with '_') are only ever
compiled through an import.

` + SubtitleStyle.Render("Examples:") + `
  stylebuild build                       Compile the current directory into dist/
  stylebuild build -I node_modules       Add a load path
  stylebuild resolve buttons --from src/app.scss
  stylebuild graph --affected src/_colors.scss
  stylebuild config show --format yaml`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if app.verbose {
				app.logger.SetLevel(log.DebugLevel)
			}
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&app.configFile, "config", "", "config file (default is <base>/stylebuild.cue, then the user config)")

	rootCmd.AddCommand(newBuildCommand(app))
	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newGraphCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits the process with its status.
// This is called by main.main().
func Execute() {
	os.Exit(Run())
}

// Run runs the CLI with production dependencies and returns the exit status.
func Run() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error:"), err)
		return int(types.ExitSetup)
	}
	return int(execute(context.Background(), newRootCommand(app)))
}

// execute runs rootCmd through fang for styled help, version and signal
// handling, then maps the outcome to an exit status.
func execute(ctx context.Context, rootCmd *cobra.Command) types.ExitCode {
	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	)
	return exitCodeOf(err)
}
