// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/charmbracelet/fang"

	"github.com/distpush/distpush/internal/config"
	"github.com/distpush/distpush/internal/dists"
	"github.com/distpush/distpush/internal/issue"
	"github.com/distpush/distpush/internal/repository"
	"github.com/distpush/distpush/internal/signing"
	"github.com/distpush/distpush/internal/upload"
	"github.com/distpush/distpush/pkg/distfile"
)

// handleError renders every error that reaches fang. In verbose mode the
// matching issue guide and the server's response body follow the message.
func (a *App) handleError(w io.Writer, _ fang.Styles, err error) {
	ae := describeError(err)
	if ae == nil {
		fmt.Fprintln(w, ErrorStyle.Render("Error: ")+err.Error())
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error: ")+ae.Format(a.verbose))

	if !a.verbose {
		if ae.Issue != 0 {
			fmt.Fprintln(w, VerboseStyle.Render("Run with --verbose for more help."))
		}
		return
	}

	var failed *upload.UploadFailedError
	if errors.As(err, &failed) && failed.Body != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, renderLabelStyle.Render("Response body:"))
		fmt.Fprintln(w, renderValueStyle.Render(strings.TrimSpace(failed.Body)))
	}

	if entry := issue.Get(ae.Issue); entry != nil {
		rendered, renderErr := entry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", ae.Issue, "error", renderErr)
			return
		}
		fmt.Fprint(w, rendered)
	}
}

// describeError attaches operation, issue and suggestions to a domain error.
// It returns nil for errors it does not know.
func describeError(err error) *issue.ActionableError {
	var (
		cfgErr      *config.ConfigurationError
		globErr     *dists.GlobExpansionError
		depErr      *upload.DeprecatedRepositoryError
		metaErr     *distfile.MetadataError
		signErr     *signing.Error
		redirectErr *upload.RedirectError
		failedErr   *upload.UploadFailedError
	)

	ctx := issue.NewErrorContext().Wrap(err)

	switch {
	case errors.As(err, &cfgErr):
		ctx.WithOperation("resolve upload settings")
		switch {
		case errors.Is(err, config.ErrMissingRepository):
			ctx.WithIssue(issue.MissingRepositoryId).
				WithSuggestion("Pass --repository-url with a complete URL, or add the section to " + cfgErr.ConfigFile)
		case errors.Is(err, config.ErrMissingCredentials):
			ctx.WithIssue(issue.MissingCredentialsId).
				WithSuggestion("Set " + config.EnvUsername + " and " + config.EnvPassword)
		default:
			ctx.WithIssue(issue.ConfigurationId).
				WithSuggestion("Run 'distpush config show' to see the resolved settings")
		}

	case errors.As(err, &globErr):
		ctx.WithOperation("find distributions").
			WithIssue(issue.UnsupportedDistId)
		if globErr.Path != "" {
			ctx.WithSuggestion("Remove " + globErr.Path + " from the arguments or narrow the pattern")
		}

	case errors.As(err, &depErr):
		ctx.WithOperation("check repository").
			WithIssue(issue.DeprecatedRepositoryId).
			WithSuggestion("Use " + config.DefaultRepositoryURL + " or " + config.TestRepositoryURL)

	case errors.As(err, &metaErr):
		ctx.WithOperation("read distribution metadata").
			WithIssue(issue.MetadataId).
			WithSuggestion("Rebuild the distribution and try again")

	case errors.As(err, &signErr):
		ctx.WithOperation("sign distribution").
			WithIssue(issue.SigningFailedId).
			WithSuggestion("Check --sign-with and --identity, or sign by hand and keep the .asc next to the file")

	case errors.As(err, &redirectErr):
		ctx.WithOperation("upload " + redirectErr.File).
			WithIssue(issue.RedirectId)

	case errors.As(err, &failedErr):
		ctx.WithOperation("upload " + failedErr.File)
		if failedErr.StatusCode == http.StatusBadRequest || failedErr.StatusCode == http.StatusConflict {
			if upload.NewClassifier().Classify(repository.Response{StatusCode: failedErr.StatusCode, Reason: failedErr.Reason}, true) == upload.StatusSkipped {
				ctx.WithIssue(issue.FileExistsId).
					WithSuggestion("Re-run with --skip-existing to skip files the index already has")
				break
			}
		}
		ctx.WithIssue(issue.UploadFailedId)
		if failedErr.StatusCode == http.StatusForbidden {
			ctx.WithSuggestion("Check your username and password; API tokens use the username __token__")
		}

	case errors.Is(err, repository.ErrTLSConfig):
		ctx.WithOperation("configure TLS").
			WithIssue(issue.TLSConfigId)

	default:
		return nil
	}

	return ctx.Build()
}
