// SPDX-License-Identifier: MPL-2.0

package upload

import (
	"slices"

	"github.com/distpush/distpush/pkg/distfile"
)

// Batch is the ordered set of artifacts for one run. Wheels always come
// before every other kind; relative order within each group is kept.
type Batch struct {
	artifacts []*distfile.Artifact
}

// NewBatch parses every path before anything is uploaded, so a file with
// unreadable metadata stops the run before the first submission. Ordering
// follows the parsed Kind, as in BatchOf.
func NewBatch(paths []string, comment string) (*Batch, error) {
	artifacts := make([]*distfile.Artifact, 0, len(paths))
	for _, p := range paths {
		a, err := distfile.FromFile(p, comment)
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, a)
	}
	return BatchOf(artifacts...), nil
}

// BatchOf builds a Batch from already parsed artifacts.
func BatchOf(artifacts ...*distfile.Artifact) *Batch {
	wheels := make([]*distfile.Artifact, 0, len(artifacts))
	var others []*distfile.Artifact
	for _, a := range artifacts {
		if a.Kind == distfile.KindWheel {
			wheels = append(wheels, a)
		} else {
			others = append(others, a)
		}
	}
	return &Batch{artifacts: append(wheels, others...)}
}

// Artifacts returns the artifacts in upload order.
func (b *Batch) Artifacts() []*distfile.Artifact {
	return slices.Clone(b.artifacts)
}

// Len returns the number of artifacts.
func (b *Batch) Len() int { return len(b.artifacts) }
