// SPDX-License-Identifier: MPL-2.0

package distfile

import (
	"errors"
	"fmt"
)

var (
	// ErrMetadata is the sentinel wrapped by every MetadataError.
	ErrMetadata = errors.New("invalid distribution metadata")

	// ErrUnsupportedFormat indicates the filename suffix is not a known distribution format.
	ErrUnsupportedFormat = errors.New("unsupported distribution format")

	// ErrNoMetadataFile indicates the archive holds no METADATA or PKG-INFO member.
	ErrNoMetadataFile = errors.New("no metadata file found in archive")

	// ErrMissingField indicates a required metadata field (Name, Version) is absent.
	ErrMissingField = errors.New("required metadata field missing")
)

// MetadataError reports an artifact whose identifying metadata could not be read.
// It matches both ErrMetadata and the underlying cause with errors.Is.
type MetadataError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *MetadataError) Error() string {
	return fmt.Sprintf("invalid distribution file %s: %v", e.Path, e.Err)
}

// Unwrap returns the sentinel and the cause.
func (e *MetadataError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMetadata}
	}
	return []error{ErrMetadata, e.Err}
}

func metadataErr(path string, err error) error {
	return &MetadataError{Path: path, Err: err}
}
