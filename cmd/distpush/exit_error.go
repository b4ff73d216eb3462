// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/distpush/distpush/internal/config"
	"github.com/distpush/distpush/internal/dists"
	"github.com/distpush/distpush/internal/repository"
	"github.com/distpush/distpush/internal/signing"
	"github.com/distpush/distpush/internal/upload"
	"github.com/distpush/distpush/pkg/distfile"
)

// Process exit codes.
const (
	ExitOK           = 0
	ExitUploadFailed = 1
	ExitConfig       = 2
	ExitMetadata     = 3
	ExitSigning      = 4
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE handlers.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitCodeFor returns the process exit code for the error returned by the
// command tree. Errors raised by cobra itself (unknown flags, missing
// arguments) count as configuration errors.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitConfig
}

// classifyExitCode maps a domain error to its exit code.
func classifyExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, signing.ErrSigning):
		return ExitSigning
	case errors.Is(err, distfile.ErrMetadata):
		return ExitMetadata
	case errors.Is(err, config.ErrConfiguration),
		errors.Is(err, dists.ErrUnsupportedDist),
		errors.Is(err, upload.ErrDeprecatedRepository),
		errors.Is(err, repository.ErrTLSConfig):
		return ExitConfig
	default:
		return ExitUploadFailed
	}
}
