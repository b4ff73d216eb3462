// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"archive/tar"
	"archive/zip"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
)

// PkgInfo renders minimal core metadata for name and version.
func PkgInfo(name, version string) string {
	return fmt.Sprintf(`Metadata-Version: 2.1
Name: %s
Version: %s
Summary: A test distribution
Home-page: https://example.com/%s
Author: Test Author
Author-email: author@example.com
License: MIT
Classifier: Programming Language :: Python :: 3
Classifier: License :: OSI Approved :: MIT License
Requires-Dist: requests (>=2.0)
Requires-Python: >=3.8
Description-Content-Type: text/markdown

# %s

Long description body.
`, name, version, name, name)
}

// WriteWheel creates dir/<name>-<version>-py3-none-any.whl and returns its path.
func WriteWheel(t testing.TB, dir, name, version string) string {
	t.Helper()
	distInfo := fmt.Sprintf("%s-%s.dist-info", name, version)
	return WriteZip(t, filepath.Join(dir, fmt.Sprintf("%s-%s-py3-none-any.whl", name, version)), map[string]string{
		name + "/__init__.py":   "",
		distInfo + "/METADATA":  PkgInfo(name, version),
		distInfo + "/WHEEL":     "Wheel-Version: 1.0\nGenerator: test\nRoot-Is-Purelib: true\nTag: py3-none-any\n",
		distInfo + "/RECORD":    "",
		distInfo + "/top_level": name + "\n",
	})
}

// WriteSdist creates dir/<name>-<version>.tar.gz and returns its path. The
// archive holds a nested egg-info PKG-INFO as well as the top-level one.
func WriteSdist(t testing.TB, dir, name, version string) string {
	t.Helper()
	root := fmt.Sprintf("%s-%s", name, version)
	return WriteTarGz(t, filepath.Join(dir, root+".tar.gz"), map[string]string{
		root + "/setup.py":                       "",
		root + "/" + name + ".egg-info/PKG-INFO": PkgInfo(name, "0.0.0"),
		root + "/PKG-INFO":                       PkgInfo(name, version),
		root + "/" + name + "/__init__.py":       "",
	})
}

// WriteZipSdist creates dir/<name>-<version>.zip and returns its path.
func WriteZipSdist(t testing.TB, dir, name, version string) string {
	t.Helper()
	root := fmt.Sprintf("%s-%s", name, version)
	return WriteZip(t, filepath.Join(dir, root+".zip"), map[string]string{
		root + "/PKG-INFO": PkgInfo(name, version),
		root + "/setup.py": "",
	})
}

// WriteEgg creates dir/<name>-<version>-py3.8.egg and returns its path.
func WriteEgg(t testing.TB, dir, name, version string) string {
	t.Helper()
	return WriteZip(t, filepath.Join(dir, fmt.Sprintf("%s-%s-py3.8.egg", name, version)), map[string]string{
		"EGG-INFO/PKG-INFO":   PkgInfo(name, version),
		name + "/__init__.py": "",
	})
}

// WriteZip writes a zip archive with the given members to path.
func WriteZip(t testing.TB, path string, members map[string]string) string {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range sortedKeys(members) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(members[name])); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip %s: %v", path, err)
	}
	return path
}

// WriteTarGz writes a gzip-compressed tarball with the given members to path.
func WriteTarGz(t testing.TB, path string, members map[string]string) string {
	t.Helper()
	MustMkdirAll(t, filepath.Dir(path))

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for _, name := range sortedKeys(members) {
		body := members[name]
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(body)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("tar header %s: %v", name, err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatalf("tar write %s: %v", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("close tar %s: %v", path, err)
	}
	if err := gw.Close(); err != nil {
		t.Fatalf("close gzip %s: %v", path, err)
	}
	return path
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
