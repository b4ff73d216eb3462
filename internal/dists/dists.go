// SPDX-License-Identifier: MPL-2.0

package dists

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/distpush/distpush/pkg/distfile"
)

// ErrUnsupportedDist is the sentinel wrapped by GlobExpansionError.
var ErrUnsupportedDist = errors.New("unsupported distribution file")

// GlobExpansionError reports a pattern that expanded to a path which is not a
// supported distribution, or a pattern with invalid glob syntax.
type GlobExpansionError struct {
	Pattern string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *GlobExpansionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot expand pattern %q: %v", e.Pattern, e.Err)
	}
	return fmt.Sprintf("pattern %q matched %s, which is not a distribution file (supported: %s)",
		e.Pattern, e.Path, strings.Join(distfile.SupportedExtensions(), ", "))
}

// Unwrap returns ErrUnsupportedDist and, for syntax errors, the glob error.
func (e *GlobExpansionError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrUnsupportedDist, e.Err}
	}
	return []error{ErrUnsupportedDist}
}

// Resolve expands patterns into distribution paths ordered wheels first.
//
// A pattern that matches nothing is kept as a literal path; whether that file
// exists is decided later, when its metadata is read. Matches within one
// pattern are sorted so results do not depend on directory listing order.
// Any path without a supported suffix fails the whole call.
func Resolve(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, &GlobExpansionError{Pattern: pattern, Err: err}
		}
		if len(matches) == 0 {
			slog.Debug("pattern matched no files, using it as a literal path", "pattern", pattern)
			matches = []string{pattern}
		} else {
			sort.Strings(matches)
		}

		for _, m := range matches {
			if _, ok := distfile.Extension(m); !ok {
				return nil, &GlobExpansionError{Pattern: pattern, Path: m}
			}
		}
		files = append(files, matches...)
	}

	return GroupWheelFilesFirst(files), nil
}

// GroupWheelFilesFirst returns files with every ".whl" entry moved ahead of
// the others. Relative order inside each group is preserved, so applying it to
// an already grouped list is a no-op.
func GroupWheelFilesFirst(files []string) []string {
	grouped := make([]string, 0, len(files))
	for _, f := range files {
		if distfile.IsWheel(f) {
			grouped = append(grouped, f)
		}
	}
	for _, f := range files {
		if !distfile.IsWheel(f) {
			grouped = append(grouped, f)
		}
	}
	return grouped
}
