// SPDX-License-Identifier: MPL-2.0

package upload

import (
	"net/http"
	"slices"
	"strings"

	"github.com/distpush/distpush/internal/repository"
)

// Status is the outcome of one artifact upload.
type Status int

const (
	// StatusUploaded means the index accepted the file.
	StatusUploaded Status = iota
	// StatusSkipped means the index already had the file and skip-existing was set.
	StatusSkipped
	// StatusFailed means the file was not uploaded and the run stopped.
	StatusFailed
)

// String returns a lowercase label for the status.
func (s Status) String() string {
	switch s {
	case StatusUploaded:
		return "uploaded"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultSkipPatterns are the reason-text fragments indexes use on a 400
// reply to say the file already exists.
var DefaultSkipPatterns = []string{
	"already exists for",
	"updating asset verified via slug already set before",
}

// Classifier maps a server reply to a Status.
type Classifier struct {
	patterns []string
}

var defaultClassifier = NewClassifier()

// NewClassifier returns a Classifier recognizing DefaultSkipPatterns plus extra.
func NewClassifier(extra ...string) *Classifier {
	patterns := slices.Clone(DefaultSkipPatterns)
	for _, p := range extra {
		if p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Classifier{patterns: patterns}
}

// Classify reports the outcome of resp using the default patterns.
func Classify(resp repository.Response, skipExisting bool) Status {
	return defaultClassifier.Classify(resp, skipExisting)
}

// Classify reports the outcome of resp.
//
// Without skipExisting every status of 400 or above fails. With it, a 409, or
// a 400 whose reason matches a skip pattern, is skipped instead.
func (c *Classifier) Classify(resp repository.Response, skipExisting bool) Status {
	if resp.StatusCode < http.StatusBadRequest {
		return StatusUploaded
	}
	if skipExisting && c.alreadyExists(resp) {
		return StatusSkipped
	}
	return StatusFailed
}

func (c *Classifier) alreadyExists(resp repository.Response) bool {
	switch resp.StatusCode {
	case http.StatusConflict:
		return true
	case http.StatusBadRequest:
		for _, p := range c.patterns {
			if strings.Contains(resp.Reason, p) {
				return true
			}
		}
	}
	return false
}
