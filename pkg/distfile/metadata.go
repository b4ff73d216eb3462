// SPDX-License-Identifier: MPL-2.0

package distfile

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/textproto"
	"strings"
)

// Metadata holds the core metadata fields of a distribution.
// Repeatable fields keep their order of appearance.
type Metadata struct {
	MetadataVersion        string
	Name                   string
	Version                string
	Summary                string
	Description            string
	DescriptionContentType string
	Keywords               string
	HomePage               string
	DownloadURL            string
	Author                 string
	AuthorEmail            string
	Maintainer             string
	MaintainerEmail        string
	License                string
	RequiresPython         string
	Platforms              []string
	SupportedPlatforms     []string
	Classifiers            []string
	RequiresDist           []string
	RequiresExternal       []string
	ProvidesDist           []string
	ObsoletesDist          []string
	ProvidesExtra          []string
	ProjectURLs            []string
	Requires               []string
	Provides               []string
	Obsoletes              []string
}

// ParseMetadata parses METADATA / PKG-INFO content.
// Name and Version are required; everything else is optional.
func ParseMetadata(data []byte) (*Metadata, error) {
	br := bufio.NewReader(bytes.NewReader(data))
	hdr, err := textproto.NewReader(br).ReadMIMEHeader()
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse metadata headers: %w", err)
	}

	body, err := io.ReadAll(br)
	if err != nil {
		return nil, fmt.Errorf("read metadata body: %w", err)
	}

	md := &Metadata{
		MetadataVersion:        hdr.Get("Metadata-Version"),
		Name:                   hdr.Get("Name"),
		Version:                hdr.Get("Version"),
		Summary:                hdr.Get("Summary"),
		Description:            hdr.Get("Description"),
		DescriptionContentType: hdr.Get("Description-Content-Type"),
		Keywords:               hdr.Get("Keywords"),
		HomePage:               hdr.Get("Home-Page"),
		DownloadURL:            hdr.Get("Download-URL"),
		Author:                 hdr.Get("Author"),
		AuthorEmail:            hdr.Get("Author-Email"),
		Maintainer:             hdr.Get("Maintainer"),
		MaintainerEmail:        hdr.Get("Maintainer-Email"),
		License:                hdr.Get("License"),
		RequiresPython:         hdr.Get("Requires-Python"),
		Platforms:              hdr.Values("Platform"),
		SupportedPlatforms:     hdr.Values("Supported-Platform"),
		Classifiers:            hdr.Values("Classifier"),
		RequiresDist:           hdr.Values("Requires-Dist"),
		RequiresExternal:       hdr.Values("Requires-External"),
		ProvidesDist:           hdr.Values("Provides-Dist"),
		ObsoletesDist:          hdr.Values("Obsoletes-Dist"),
		ProvidesExtra:          hdr.Values("Provides-Extra"),
		ProjectURLs:            hdr.Values("Project-URL"),
		Requires:               hdr.Values("Requires"),
		Provides:               hdr.Values("Provides"),
		Obsoletes:              hdr.Values("Obsoletes"),
	}

	// Metadata 2.1+ may carry the description as the message body.
	if text := strings.TrimSpace(string(body)); text != "" && md.Description == "" {
		md.Description = text
	}

	if md.Name == "" {
		return nil, fmt.Errorf("%w: Name", ErrMissingField)
	}
	if md.Version == "" {
		return nil, fmt.Errorf("%w: Version", ErrMissingField)
	}

	return md, nil
}
