// SPDX-License-Identifier: MPL-2.0

package distfile

import (
	"path/filepath"
	"strings"
)

// Kind classifies an artifact by its filename suffix.
type Kind int

const (
	// KindOther is any supported distribution that is neither a wheel nor an sdist (eggs).
	KindOther Kind = iota
	// KindSourceDist is a source distribution (.tar.gz, .tar.bz2, .zip).
	KindSourceDist
	// KindWheel is a built wheel (.whl).
	KindWheel
)

// Upload file types as understood by the index.
const (
	FileTypeSdist = "sdist"
	FileTypeWheel = "bdist_wheel"
	FileTypeEgg   = "bdist_egg"
)

// WheelExt is the wheel filename suffix.
const WheelExt = ".whl"

// distExtensions maps every supported suffix to the index file type. Multi-part
// suffixes come first so ".tar.gz" wins over a hypothetical ".gz".
var distExtensions = []struct {
	ext      string
	fileType string
	kind     Kind
}{
	{".tar.gz", FileTypeSdist, KindSourceDist},
	{".tar.bz2", FileTypeSdist, KindSourceDist},
	{".zip", FileTypeSdist, KindSourceDist},
	{WheelExt, FileTypeWheel, KindWheel},
	{".egg", FileTypeEgg, KindOther},
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindWheel:
		return "wheel"
	case KindSourceDist:
		return "sdist"
	default:
		return "other"
	}
}

// SupportedExtensions lists the accepted distribution suffixes.
func SupportedExtensions() []string {
	exts := make([]string, len(distExtensions))
	for i, d := range distExtensions {
		exts[i] = d.ext
	}
	return exts
}

// Extension returns the distribution suffix of path and whether it is supported.
// Suffixes match case-sensitively, the same way IsWheel does.
func Extension(path string) (string, bool) {
	base := filepath.Base(path)
	for _, d := range distExtensions {
		if strings.HasSuffix(base, d.ext) {
			return d.ext, true
		}
	}
	return filepath.Ext(base), false
}

// IsWheel reports whether path names a wheel.
func IsWheel(path string) bool {
	ext, ok := Extension(path)
	return ok && ext == WheelExt
}

// KindOf returns the Kind and index file type for path. ok is false when the
// suffix is not a supported distribution format.
func KindOf(path string) (kind Kind, fileType string, ok bool) {
	ext, ok := Extension(path)
	if !ok {
		return KindOther, "", false
	}
	for _, d := range distExtensions {
		if d.ext == ext {
			return d.kind, d.fileType, true
		}
	}
	return KindOther, "", false
}
