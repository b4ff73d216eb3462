// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the distpush CLI commands.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "distpush",
		Short: "Upload Python distributions to a package index",
		Long: TitleStyle.Render("distpush") + SubtitleStyle.Render(" - upload Python distributions to a package index") + `

distpush uploads wheels, source distributions and eggs to PyPI or any index
speaking the legacy upload API. Wheels are always uploaded before the other
files of a release, and the run stops at the first rejected file.

Settings come from flags, then DISTPUSH_* environment variables, then the
matching section of ~/.pypirc.

` + SubtitleStyle.Render("Examples:") + `
  distpush upload dist/*                  Upload everything in dist/ to PyPI
  distpush upload -r testpypi dist/*      Upload to TestPyPI
  distpush upload --skip-existing dist/*  Resume an interrupted release
  distpush config show                    Show the resolved settings`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			setupLogging(cmd.ErrOrStderr(), app.verbose)
		},
	}

	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "show verbose output")

	root.AddCommand(newUploadCommand(app))
	root.AddCommand(newConfigCommand(app))

	return root
}

// Run executes the CLI with args and returns the process exit code.
func (a *App) Run(ctx context.Context, args []string) int {
	root := NewRootCommand(a)
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := fang.Execute(
		ctx,
		root,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(a.handleError),
	)
	return exitCodeFor(err)
}

// Main runs distpush with the process arguments and returns the exit code.
func Main() int {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		return ExitUploadFailed
	}
	return app.Run(context.Background(), os.Args[1:])
}

// Execute runs distpush and exits the process. It is called by main.main().
func Execute() {
	os.Exit(Main())
}
