// SPDX-License-Identifier: MPL-2.0

package distfile

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// maxMetadataBytes bounds how much of a metadata member is read into memory.
const maxMetadataBytes = 10 << 20

const (
	wheelMetadataName = "METADATA"
	pkgInfoName       = "PKG-INFO"
	eggInfoDir        = "EGG-INFO"
)

// readMetadataFile returns the raw METADATA / PKG-INFO bytes for the archive at p.
func readMetadataFile(p, ext string) ([]byte, error) {
	switch ext {
	case WheelExt:
		return readZipMember(p, isWheelMetadata)
	case ".egg":
		return readZipMember(p, func(name string) bool {
			return name == eggInfoDir+"/"+pkgInfoName
		})
	case ".zip":
		return readZipMember(p, isPkgInfo)
	case ".tar.gz":
		return readTarMember(p, func(r io.Reader) (io.Reader, error) {
			return gzip.NewReader(r)
		})
	case ".tar.bz2":
		return readTarMember(p, func(r io.Reader) (io.Reader, error) {
			return bzip2.NewReader(r), nil
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// isWheelMetadata matches "<name>-<version>.dist-info/METADATA" at the archive root.
func isWheelMetadata(name string) bool {
	dir, file := path.Split(name)
	return file == wheelMetadataName &&
		strings.Count(dir, "/") == 1 &&
		strings.HasSuffix(dir, ".dist-info/")
}

func isPkgInfo(name string) bool {
	return path.Base(name) == pkgInfoName
}

// depth counts the directory levels above a member.
func depth(name string) int {
	return strings.Count(strings.Trim(path.Clean(name), "/"), "/")
}

// readZipMember reads the shallowest member accepted by match.
func readZipMember(p string, match func(string) bool) ([]byte, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("open zip archive: %w", err)
	}
	defer zr.Close()

	var best *zip.File
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || !match(f.Name) {
			continue
		}
		if best == nil || depth(f.Name) < depth(best.Name) {
			best = f
		}
	}
	if best == nil {
		return nil, ErrNoMetadataFile
	}

	rc, err := best.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", best.Name, err)
	}
	defer rc.Close()

	return readBounded(rc, best.Name)
}

// readTarMember reads the shallowest PKG-INFO in a compressed tarball.
func readTarMember(p string, decompress func(io.Reader) (io.Reader, error)) ([]byte, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("open tar archive: %w", err)
	}
	defer f.Close()

	r, err := decompress(f)
	if err != nil {
		return nil, fmt.Errorf("decompress tar archive: %w", err)
	}

	var (
		best      []byte
		bestDepth = -1
	)
	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read tar archive: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg || !isPkgInfo(hdr.Name) {
			continue
		}
		d := depth(hdr.Name)
		if bestDepth >= 0 && d >= bestDepth {
			continue
		}
		data, err := readBounded(tr, hdr.Name)
		if err != nil {
			return nil, err
		}
		best, bestDepth = data, d
	}
	if best == nil {
		return nil, ErrNoMetadataFile
	}
	return best, nil
}

func readBounded(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxMetadataBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxMetadataBytes {
		return nil, fmt.Errorf("%s exceeds %d bytes", name, maxMetadataBytes)
	}
	return data, nil
}
