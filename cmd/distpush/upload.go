// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/distpush/distpush/internal/config"
	"github.com/distpush/distpush/internal/dists"
	"github.com/distpush/distpush/internal/repository"
	"github.com/distpush/distpush/internal/upload"
)

// uploadParams bundles the flags and outputs of the upload command, so that
// runUpload can be tested without a Cobra command.
type uploadParams struct {
	stdout io.Writer
	opts   config.Options
	dists  []string
}

func newUploadCommand(app *App) *cobra.Command {
	var p uploadParams

	cmd := &cobra.Command{
		Use:   "upload [flags] <dist>...",
		Short: "Upload distributions to a package index",
		Long: `Upload distributions to a package index.

Each argument is a file or a glob pattern (quote it to let distpush expand
"**"). Supported formats are .whl, .tar.gz, .tar.bz2, .zip and .egg.

Files are uploaded one at a time, wheels first. The run stops at the first
file the index rejects; files uploaded before it stay uploaded. Use
--skip-existing to resume.`,
		Example: `  # Upload a release to PyPI
  distpush upload dist/*

  # Upload to a private index with an API token from the environment
  DISTPUSH_PASSWORD=... distpush upload --repository-url https://pkgs.example.com/legacy/ -u __token__ dist/*

  # Sign with a specific key
  distpush upload --sign --identity 0xDEADBEEF dist/*`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p.stdout = cmd.OutOrStdout()
			p.dists = args
			p.opts.Verbose = app.verbose
			p.opts.Prompter = app.Prompter

			if _, err := runUpload(cmd.Context(), app, p); err != nil {
				return &ExitError{Code: classifyExitCode(err), Err: err}
			}
			return nil
		},
	}

	f := cmd.Flags()
	bindDestinationFlags(f, &p.opts)
	f.BoolVarP(&p.opts.Sign, "sign", "s", false, "sign files before uploading")
	f.StringVar(&p.opts.SignWith, "sign-with", "",
		`program used to sign files (default "`+config.DefaultSignWith+`")`)
	f.StringVarP(&p.opts.Identity, "identity", "i", "", "key to sign files with, implies --sign")
	f.StringVarP(&p.opts.Comment, "comment", "c", "", "comment to attach to every uploaded file")
	f.BoolVar(&p.opts.SkipExisting, "skip-existing", false, "continue when a file already exists on the index")

	return cmd
}

// runUpload is the core upload logic, separated from Cobra for testability.
//
// Flow:
//  1. Expand the patterns into wheel-first paths.
//  2. Resolve settings and reject legacy destinations.
//  3. Parse every artifact.
//  4. Upload them in order, reporting each outcome as it is decided.
func runUpload(ctx context.Context, app *App, p uploadParams) ([]upload.Outcome, error) {
	paths, err := dists.Resolve(p.dists)
	if err != nil {
		return nil, err
	}

	settings, err := app.Config.Resolve(ctx, p.opts)
	if err != nil {
		return nil, err
	}
	if err := upload.CheckRepository(settings.RepositoryURL); err != nil {
		return nil, err
	}

	batch, err := upload.NewBatch(paths, settings.Comment)
	if err != nil {
		return nil, err
	}

	transport, err := app.Transports(settings)
	if err != nil {
		return nil, err
	}

	sessionOpts := []upload.SessionOption{
		upload.WithObserver(func(o upload.Outcome) { printOutcome(p.stdout, o) }),
	}
	if app.Signer != nil {
		sessionOpts = append(sessionOpts, upload.WithSigner(app.Signer))
	}

	fmt.Fprintf(p.stdout, "%s %s\n", TitleStyle.Render("Uploading distributions to"), CmdStyle.Render(repository.RedactURL(settings.RepositoryURL, settings.Password)))

	outcomes, err := upload.NewSession(transport, sessionOpts...).Run(ctx, settings, batch)
	if err != nil {
		return outcomes, err
	}

	printSummary(p.stdout, outcomes)
	return outcomes, nil
}

func printOutcome(w io.Writer, o upload.Outcome) {
	name := o.Artifact.Basename()
	switch o.Status {
	case upload.StatusUploaded:
		fmt.Fprintf(w, "  %s %s\n", SuccessStyle.Render("✓"), name)
	case upload.StatusSkipped:
		fmt.Fprintf(w, "  %s %s %s\n", WarningStyle.Render("↷"), name, SubtitleStyle.Render("(already exists, skipped)"))
	case upload.StatusFailed:
		fmt.Fprintf(w, "  %s %s\n", ErrorStyle.Render("✗"), name)
	}
}

func printSummary(w io.Writer, outcomes []upload.Outcome) {
	var uploaded, skipped int
	for _, o := range outcomes {
		switch o.Status {
		case upload.StatusUploaded:
			uploaded++
		case upload.StatusSkipped:
			skipped++
		case upload.StatusFailed:
		}
	}
	fmt.Fprintln(w, SubtitleStyle.Render(fmt.Sprintf("%d uploaded, %d skipped", uploaded, skipped)))
}
