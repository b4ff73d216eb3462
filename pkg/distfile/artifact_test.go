// SPDX-License-Identifier: MPL-2.0

package distfile

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/distpush/distpush/internal/testutil"
)

func TestFromFile_Wheel(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteWheel(t, dir, "demo", "1.5.0")

	a, err := FromFile(path, "release notes")
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if a.Kind != KindWheel {
		t.Errorf("Kind = %v, want %v", a.Kind, KindWheel)
	}
	if a.FileType != FileTypeWheel {
		t.Errorf("FileType = %q, want %q", a.FileType, FileTypeWheel)
	}
	if a.PyVersion != "py3" {
		t.Errorf("PyVersion = %q, want %q", a.PyVersion, "py3")
	}
	if a.Name() != "demo" || a.Version() != "1.5.0" {
		t.Errorf("name/version = %s/%s, want demo/1.5.0", a.Name(), a.Version())
	}
	if a.Comment != "release notes" {
		t.Errorf("Comment = %q", a.Comment)
	}
	if a.SignaturePath != "" {
		t.Errorf("SignaturePath = %q, want empty", a.SignaturePath)
	}
}

func TestFromFile_SdistPicksTopLevelPkgInfo(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteSdist(t, dir, "demo", "2.0")

	a, err := FromFile(path, "")
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if a.Kind != KindSourceDist {
		t.Errorf("Kind = %v, want %v", a.Kind, KindSourceDist)
	}
	// The nested egg-info PKG-INFO declares 0.0.0.
	if a.Version() != "2.0" {
		t.Errorf("Version = %q, want %q", a.Version(), "2.0")
	}
	if a.PyVersion != PyVersionSource {
		t.Errorf("PyVersion = %q, want %q", a.PyVersion, PyVersionSource)
	}
}

func TestFromFile_Bzip2Sdist(t *testing.T) {
	t.Parallel()

	a, err := FromFile(filepath.Join("testdata", "demo-1.0.tar.bz2"), "")
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}

	if a.Kind != KindSourceDist || a.FileType != FileTypeSdist {
		t.Errorf("kind/filetype = %v/%s, want %v/%s", a.Kind, a.FileType, KindSourceDist, FileTypeSdist)
	}
	if a.Name() != "demo" || a.Version() != "1.0" {
		t.Errorf("name/version = %s/%s, want demo/1.0", a.Name(), a.Version())
	}
	if a.Metadata.Summary != "A bzip2 source distribution" {
		t.Errorf("Summary = %q", a.Metadata.Summary)
	}
	if a.Metadata.RequiresPython != ">=3.8" {
		t.Errorf("RequiresPython = %q", a.Metadata.RequiresPython)
	}
	if a.PyVersion != PyVersionSource {
		t.Errorf("PyVersion = %q, want %q", a.PyVersion, PyVersionSource)
	}
}

func TestFromFile_ZipSdistAndEgg(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	zipSdist, err := FromFile(testutil.WriteZipSdist(t, dir, "demo", "3.1"), "")
	if err != nil {
		t.Fatalf("FromFile(zip): %v", err)
	}
	if zipSdist.Kind != KindSourceDist || zipSdist.FileType != FileTypeSdist {
		t.Errorf("zip sdist kind/filetype = %v/%s", zipSdist.Kind, zipSdist.FileType)
	}

	egg, err := FromFile(testutil.WriteEgg(t, dir, "demo", "3.1"), "")
	if err != nil {
		t.Fatalf("FromFile(egg): %v", err)
	}
	if egg.Kind != KindOther || egg.FileType != FileTypeEgg {
		t.Errorf("egg kind/filetype = %v/%s", egg.Kind, egg.FileType)
	}
	if egg.PyVersion != "py3.8" {
		t.Errorf("egg PyVersion = %q, want py3.8", egg.PyVersion)
	}
}

func TestFromFile_Digests(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := testutil.WriteWheel(t, dir, "demo", "1.0")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(data)

	a, err := FromFile(path, "")
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if a.Digests.SHA256 != hex.EncodeToString(sum[:]) {
		t.Errorf("SHA256 = %s, want %x", a.Digests.SHA256, sum)
	}
	if len(a.Digests.MD5) != 32 {
		t.Errorf("MD5 length = %d, want 32", len(a.Digests.MD5))
	}
	if len(a.Digests.Blake2b256) != 64 {
		t.Errorf("Blake2b256 length = %d, want 64", len(a.Digests.Blake2b256))
	}
}

func TestFromFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	noMetadata := testutil.WriteZip(t, filepath.Join(dir, "empty-1.0-py3-none-any.whl"), map[string]string{
		"empty/__init__.py": "",
	})
	noVersion := testutil.WriteZip(t, filepath.Join(dir, "nover-1.0-py3-none-any.whl"), map[string]string{
		"nover-1.0.dist-info/METADATA": "Metadata-Version: 2.1\nName: nover\n\n",
	})
	garbage := testutil.MustWriteFile(t, dir, "garbage-1.0.tar.gz", "not a tarball")
	garbageBz2 := testutil.MustWriteFile(t, dir, "garbage-1.0.tar.bz2", "not a bzip2 stream")

	tests := []struct {
		name  string
		path  string
		cause error
	}{
		{"missing file", filepath.Join(dir, "absent-1.0.tar.gz"), nil},
		{"no metadata member", noMetadata, ErrNoMetadataFile},
		{"missing version", noVersion, ErrMissingField},
		{"corrupt archive", garbage, nil},
		{"corrupt bzip2 archive", garbageBz2, nil},
		{"unsupported suffix", filepath.Join(dir, "demo.rb"), ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := FromFile(tt.path, "")
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrMetadata) {
				t.Errorf("error should wrap ErrMetadata, got: %v", err)
			}
			var mdErr *MetadataError
			if !errors.As(err, &mdErr) {
				t.Fatalf("error should be *MetadataError, got %T", err)
			}
			if mdErr.Path != tt.path {
				t.Errorf("Path = %q, want %q", mdErr.Path, tt.path)
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("error should wrap %v, got: %v", tt.cause, err)
			}
		})
	}
}

func TestWithSignature_DoesNotMutate(t *testing.T) {
	t.Parallel()

	a := &Artifact{Path: "dist/demo-1.0.tar.gz"}
	signed := a.WithSignature("dist/demo-1.0.tar.gz.asc")

	if a.SignaturePath != "" {
		t.Errorf("original mutated: %q", a.SignaturePath)
	}
	if signed.SignaturePath != "dist/demo-1.0.tar.gz.asc" {
		t.Errorf("SignaturePath = %q", signed.SignaturePath)
	}
	if signed.SignatureName() != "demo-1.0.tar.gz.asc" {
		t.Errorf("SignatureName = %q", signed.SignatureName())
	}
}

func TestFormFields(t *testing.T) {
	t.Parallel()

	a := &Artifact{
		FileType:  FileTypeWheel,
		PyVersion: "py3",
		Comment:   "hello",
		Metadata: Metadata{
			Name:        "demo",
			Version:     "1.0",
			Classifiers: []string{"A", "B"},
		},
		Digests: Digests{SHA256: "abc"},
	}

	got := map[string][]string{}
	for _, f := range a.FormFields() {
		got[f.Name] = append(got[f.Name], f.Value)
	}

	want := map[string][]string{
		"name":          {"demo"},
		"version":       {"1.0"},
		"filetype":      {FileTypeWheel},
		"pyversion":     {"py3"},
		"comment":       {"hello"},
		"classifiers":   {"A", "B"},
		"sha256_digest": {"abc"},
	}
	if len(got) != len(want) {
		t.Errorf("got %d distinct fields, want %d: %v", len(got), len(want), got)
	}
	for k, vs := range want {
		if len(got[k]) != len(vs) {
			t.Errorf("field %s = %v, want %v", k, got[k], vs)
			continue
		}
		for i := range vs {
			if got[k][i] != vs[i] {
				t.Errorf("field %s[%d] = %q, want %q", k, i, got[k][i], vs[i])
			}
		}
	}
}
