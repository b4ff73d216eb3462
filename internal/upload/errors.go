// SPDX-License-Identifier: MPL-2.0

package upload

import (
	"errors"
	"fmt"

	"github.com/distpush/distpush/internal/config"
)

var (
	// ErrDeprecatedRepository is wrapped by DeprecatedRepositoryError.
	ErrDeprecatedRepository = errors.New("deprecated repository")

	// ErrUploadFailed is wrapped by UploadFailedError.
	ErrUploadFailed = errors.New("upload failed")

	// ErrRedirect is wrapped by RedirectError.
	ErrRedirect = errors.New("repository redirected")
)

// MigrationGuideURL explains the move away from the legacy index hosts.
const MigrationGuideURL = "https://packaging.python.org/guides/migrating-to-pypi-org/"

// deprecatedHosts are the legacy index hosts that no longer accept uploads.
var deprecatedHosts = []string{"pypi.python.org", "testpypi.python.org"}

type (
	// DeprecatedRepositoryError is returned before any upload when the
	// destination is a legacy index host.
	DeprecatedRepositoryError struct {
		URL string
	}

	// UploadFailedError carries the rejecting reply verbatim.
	UploadFailedError struct {
		File       string
		URL        string
		StatusCode int
		Reason     string
		// Body is the start of the response body, shown in verbose mode.
		Body string
	}

	// RedirectError is returned when the index answers with a redirect.
	// Following it would resend credentials and the file to another URL.
	RedirectError struct {
		File       string
		URL        string
		Location   string
		StatusCode int
	}
)

// Error implements the error interface.
func (e *DeprecatedRepositoryError) Error() string {
	return fmt.Sprintf("You're trying to upload to the legacy PyPI site '%s'. "+
		"Uploading to those sites is deprecated. \n "+
		"The new sites are pypi.org and test.pypi.org. Try using %s (or %s) "+
		"to upload your packages instead. "+
		"These are the default URLs for distpush now. \n "+
		"More at %s .", e.URL, config.DefaultRepositoryURL, config.TestRepositoryURL, MigrationGuideURL)
}

// Unwrap returns ErrDeprecatedRepository.
func (e *DeprecatedRepositoryError) Unwrap() error { return ErrDeprecatedRepository }

// Error implements the error interface.
func (e *UploadFailedError) Error() string {
	return fmt.Sprintf("%d %s for url: %s (uploading %s)", e.StatusCode, e.Reason, e.URL, e.File)
}

// Unwrap returns ErrUploadFailed.
func (e *UploadFailedError) Unwrap() error { return ErrUploadFailed }

// Error implements the error interface.
func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s attempted to redirect to %s.\n"+
		"If you trust these URLs, set %s as your repository URL.", e.URL, e.Location, e.Location)
}

// Unwrap returns ErrRedirect.
func (e *RedirectError) Unwrap() error { return ErrRedirect }
