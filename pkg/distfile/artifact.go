// SPDX-License-Identifier: MPL-2.0

package distfile

import (
	"crypto/md5" //nolint:gosec // the index still accepts md5_digest alongside sha256
	_ "crypto/sha256" // registers sha256 for go-digest
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/opencontainers/go-digest"
	"golang.org/x/crypto/blake2b"
)

// PyVersionSource is the pyversion reported for source distributions.
const PyVersionSource = "source"

var eggFilenameRe = regexp.MustCompile(`^(?P<name>.+?)-(?P<ver>.+?)(-(?P<pyver>py\d\.\d+)(-(?P<plat>.+?))?)?\.egg$`)

type (
	// Digests holds the hex-encoded content digests of an artifact.
	Digests struct {
		MD5        string
		SHA256     string
		Blake2b256 string
	}

	// Artifact is one distribution file prepared for upload.
	// Values are not modified after FromFile returns; use WithSignature
	// to derive a signed copy.
	Artifact struct {
		Path          string
		Kind          Kind
		FileType      string
		PyVersion     string
		Metadata      Metadata
		Comment       string
		Digests       Digests
		SignaturePath string
	}

	// Field is a single multipart form field. Repeatable metadata
	// fields produce one Field per value.
	Field struct {
		Name  string
		Value string
	}
)

// FromFile reads the artifact at path, parsing its embedded metadata and
// computing its digests. comment is attached to the upload as-is.
func FromFile(path, comment string) (*Artifact, error) {
	ext, ok := Extension(path)
	if !ok {
		return nil, metadataErr(path, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path)))
	}
	kind, fileType, _ := KindOf(path)

	raw, err := readMetadataFile(path, ext)
	if err != nil {
		return nil, metadataErr(path, err)
	}
	md, err := ParseMetadata(raw)
	if err != nil {
		return nil, metadataErr(path, err)
	}

	digests, err := computeDigests(path)
	if err != nil {
		return nil, metadataErr(path, err)
	}

	return &Artifact{
		Path:      path,
		Kind:      kind,
		FileType:  fileType,
		PyVersion: pyVersion(filepath.Base(path), kind),
		Metadata:  *md,
		Comment:   comment,
		Digests:   digests,
	}, nil
}

// Basename returns the artifact's filename without directories.
func (a *Artifact) Basename() string {
	return filepath.Base(a.Path)
}

// Name returns the distribution name from metadata.
func (a *Artifact) Name() string { return a.Metadata.Name }

// Version returns the distribution version from metadata.
func (a *Artifact) Version() string { return a.Metadata.Version }

// SignatureName is the filename the detached signature is uploaded under.
func (a *Artifact) SignatureName() string {
	return a.Basename() + ".asc"
}

// WithSignature returns a copy of a that references the signature at sigPath.
func (a *Artifact) WithSignature(sigPath string) *Artifact {
	cp := *a
	cp.SignaturePath = sigPath
	return &cp
}

// FormFields returns the metadata form fields for the upload request.
// Empty scalar fields are omitted.
func (a *Artifact) FormFields() []Field {
	md := a.Metadata
	var fields []Field
	add := func(name, value string) {
		if value != "" {
			fields = append(fields, Field{Name: name, Value: value})
		}
	}
	addAll := func(name string, values []string) {
		for _, v := range values {
			fields = append(fields, Field{Name: name, Value: v})
		}
	}

	add("name", md.Name)
	add("version", md.Version)
	add("filetype", a.FileType)
	add("pyversion", a.PyVersion)
	add("metadata_version", md.MetadataVersion)
	add("summary", md.Summary)
	add("home_page", md.HomePage)
	add("author", md.Author)
	add("author_email", md.AuthorEmail)
	add("maintainer", md.Maintainer)
	add("maintainer_email", md.MaintainerEmail)
	add("license", md.License)
	add("description", md.Description)
	add("description_content_type", md.DescriptionContentType)
	add("keywords", md.Keywords)
	addAll("platform", md.Platforms)
	addAll("classifiers", md.Classifiers)
	add("download_url", md.DownloadURL)
	addAll("supported_platform", md.SupportedPlatforms)
	add("comment", a.Comment)
	add("md5_digest", a.Digests.MD5)
	add("sha256_digest", a.Digests.SHA256)
	add("blake2_256_digest", a.Digests.Blake2b256)
	addAll("provides", md.Provides)
	addAll("requires", md.Requires)
	addAll("obsoletes", md.Obsoletes)
	addAll("project_urls", md.ProjectURLs)
	addAll("provides_dist", md.ProvidesDist)
	addAll("obsoletes_dist", md.ObsoletesDist)
	addAll("requires_dist", md.RequiresDist)
	addAll("requires_external", md.RequiresExternal)
	add("requires_python", md.RequiresPython)
	addAll("provides_extra", md.ProvidesExtra)

	return fields
}

// computeDigests streams the file once through every hash.
func computeDigests(path string) (Digests, error) {
	f, err := os.Open(path)
	if err != nil {
		return Digests{}, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	md5Hash := md5.New() //nolint:gosec // see import
	sha := digest.SHA256.Digester()
	b2, err := blake2b.New256(nil)
	if err != nil {
		return Digests{}, fmt.Errorf("init blake2b: %w", err)
	}

	if _, err := io.Copy(io.MultiWriter(md5Hash, sha.Hash(), b2), f); err != nil {
		return Digests{}, fmt.Errorf("hash artifact: %w", err)
	}

	return Digests{
		MD5:        hexSum(md5Hash),
		SHA256:     sha.Digest().Encoded(),
		Blake2b256: hexSum(b2),
	}, nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// pyVersion derives the python tag from a distribution filename.
func pyVersion(base string, kind Kind) string {
	switch kind {
	case KindWheel:
		// name-version(-build)?-pytag-abitag-platformtag.whl
		parts := strings.Split(strings.TrimSuffix(base, WheelExt), "-")
		if len(parts) < 5 {
			return ""
		}
		return parts[len(parts)-3]
	case KindSourceDist:
		return PyVersionSource
	default:
		m := eggFilenameRe.FindStringSubmatch(base)
		if m == nil {
			return ""
		}
		return m[eggFilenameRe.SubexpIndex("pyver")]
	}
}
