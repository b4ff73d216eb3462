// SPDX-License-Identifier: MPL-2.0

package dists

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/distpush/distpush/internal/testutil"
)

func TestGroupWheelFilesFirst(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		files []string
		want  []string
	}{
		{
			name:  "wheels move ahead, order kept",
			files: []string{"twine/foo.py", "twine/first.whl", "twine/bar.py", "twine/second.whl"},
			want:  []string{"twine/first.whl", "twine/second.whl", "twine/foo.py", "twine/bar.py"},
		},
		{
			name:  "no wheels",
			files: []string{"twine/foo.py", "twine/bar.py"},
			want:  []string{"twine/foo.py", "twine/bar.py"},
		},
		{
			name:  "mixed wheels and scripts",
			files: []string{"a.py", "x.whl", "b.py", "y.whl"},
			want:  []string{"x.whl", "y.whl", "a.py", "b.py"},
		},
		{
			name:  "upper-case suffix is not a wheel",
			files: []string{"a.tar.gz", "b.WHL", "c.whl"},
			want:  []string{"c.whl", "a.tar.gz", "b.WHL"},
		},
		{
			name:  "empty",
			files: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := GroupWheelFilesFirst(tt.files)
			if !slices.Equal(got, tt.want) {
				t.Errorf("GroupWheelFilesFirst() = %v, want %v", got, tt.want)
			}
			if again := GroupWheelFilesFirst(got); !slices.Equal(again, got) {
				t.Errorf("grouping is not idempotent: %v -> %v", got, again)
			}
		})
	}
}

func TestResolve_ExpandsGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	sdist := testutil.WriteSdist(t, dir, "demo", "1.0")
	wheel := testutil.WriteWheel(t, dir, "demo", "1.0")
	testutil.MustWriteFile(t, dir, "README.md", "ignored")

	got, err := Resolve([]string{filepath.Join(dir, "demo-*")})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	want := []string{wheel, sdist}
	if !slices.Equal(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}
}

func TestResolve_LiteralPathsPassThrough(t *testing.T) {
	t.Parallel()

	// None of these exist; existence is checked when metadata is read.
	in := []string{"dist/a-1.0.tar.gz", "dist/x-1.0-py3-none-any.whl", "dist/b-1.0.zip", "dist/y-1.0-py3-none-any.whl"}
	want := []string{"dist/x-1.0-py3-none-any.whl", "dist/y-1.0-py3-none-any.whl", "dist/a-1.0.tar.gz", "dist/b-1.0.zip"}

	got, err := Resolve(in)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !slices.Equal(got, want) {
		t.Errorf("Resolve() = %v, want %v", got, want)
	}

	again, err := Resolve(got)
	if err != nil {
		t.Fatalf("Resolve (second pass): %v", err)
	}
	if !slices.Equal(again, got) {
		t.Errorf("Resolve is not idempotent: %v -> %v", got, again)
	}
}

func TestResolve_RejectsUnsupportedExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.WriteWheel(t, dir, "demo", "1.0")
	testutil.MustWriteFile(t, dir, "setup.py", "")

	tests := []struct {
		name     string
		patterns []string
	}{
		{"unmatched glob", []string{filepath.Join(dir, "*.rb")}},
		{"glob matching a non-dist", []string{filepath.Join(dir, "*")}},
		{"valid pattern followed by a bad one", []string{filepath.Join(dir, "*.whl"), "twine/*.rb"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Resolve(tt.patterns)
			if err == nil {
				t.Fatalf("expected error, got %v", got)
			}
			if got != nil {
				t.Errorf("expected no partial result, got %v", got)
			}
			var globErr *GlobExpansionError
			if !errors.As(err, &globErr) {
				t.Fatalf("error should be *GlobExpansionError, got %T", err)
			}
			if !errors.Is(err, ErrUnsupportedDist) {
				t.Errorf("error should wrap ErrUnsupportedDist")
			}
		})
	}
}

func TestResolve_BadPattern(t *testing.T) {
	t.Parallel()

	_, err := Resolve([]string{"dist/[.whl"})
	var globErr *GlobExpansionError
	if !errors.As(err, &globErr) {
		t.Fatalf("error should be *GlobExpansionError, got %v", err)
	}
	if globErr.Err == nil {
		t.Error("expected the glob syntax error to be wrapped")
	}
}

// Not parallel: changes the working directory.
func TestResolve_RelativePatterns(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "dist/demo-1.0.tar.gz", "")
	testutil.MustWriteFile(t, dir, "dist/demo-1.0-py3-none-any.whl", "")
	testutil.MustWriteFile(t, dir, "dist/nested/demo-1.0-py3.8.egg", "")
	testutil.MustChdir(t, dir)

	got, err := Resolve([]string{"dist/**"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []string{
		filepath.Join("dist", "demo-1.0-py3-none-any.whl"),
		filepath.Join("dist", "demo-1.0.tar.gz"),
		filepath.Join("dist", "nested", "demo-1.0-py3.8.egg"),
	}
	if !slices.Equal(got, want) {
		t.Errorf("Resolve = %v, want %v", got, want)
	}
}

// Not parallel: changes the working directory.
func TestResolve_UpperCaseSuffixRejected(t *testing.T) {
	dir := t.TempDir()
	testutil.MustWriteFile(t, dir, "dist/demo-1.0.tar.gz", "")
	testutil.MustWriteFile(t, dir, "dist/demo-1.0-py3-none-any.WHL", "")
	testutil.MustChdir(t, dir)

	got, err := Resolve([]string{"dist/*"})
	var globErr *GlobExpansionError
	if !errors.As(err, &globErr) {
		t.Fatalf("expected *GlobExpansionError, got %v (result %v)", err, got)
	}
	if globErr.Path != filepath.Join("dist", "demo-1.0-py3-none-any.WHL") {
		t.Errorf("Path = %q", globErr.Path)
	}
}
