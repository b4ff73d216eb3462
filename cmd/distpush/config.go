// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/distpush/distpush/internal/config"
)

// newConfigCommand creates the `distpush config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect upload settings",
		Long: `Inspect upload settings.

Settings are resolved from flags, then DISTPUSH_* environment variables,
then the repository's section in the .pypirc configuration file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var opts config.Options
	show := &cobra.Command{
		Use:   "show",
		Short: "Show the resolved settings with the password masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := showConfig(cmd.Context(), app, cmd.OutOrStdout(), opts); err != nil {
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}
			return nil
		},
	}
	bindDestinationFlags(show.Flags(), &opts)
	cfgCmd.AddCommand(show)

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, w io.Writer, opts config.Options) error {
	opts.AllowMissingCredentials = true
	opts.Prompter = nil

	s, err := app.Config.Resolve(ctx, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render("Resolved settings"))
	fmt.Fprintln(w)
	for line := range strings.Lines(s.String()) {
		key, value, _ := strings.Cut(strings.TrimRight(line, "\n"), ":")
		fmt.Fprintf(w, "%s:%s\n", CmdStyle.Render(key), value)
	}
	return nil
}
