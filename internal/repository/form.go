// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/distpush/distpush/pkg/distfile"
)

// Form field names fixed by the legacy upload API.
const (
	FieldAction          = ":action"
	FieldProtocolVersion = "protocol_version"
	FieldContent         = "content"
	FieldSignature       = "gpg_signature"

	actionFileUpload = "file_upload"
	protocolVersion  = "1"
)

type (
	// Request is one file upload.
	Request struct {
		// FilePath is the artifact on disk, sent as the "content" part.
		FilePath string
		// FileName is the name the index records. Defaults to the base of FilePath.
		FileName string
		// SignaturePath is an optional ASCII-armored detached signature.
		SignaturePath string
		// Fields are the metadata form fields, in order.
		Fields []distfile.Field

		Username string
		Password string
	}

	// Response is the part of the server's reply the caller acts on.
	Response struct {
		StatusCode int
		// Reason is the status text as sent by the server.
		Reason string
		// Location is set on redirects.
		Location string
		// Body is the start of the response body.
		Body string
	}
)

// IsRedirect reports whether the server answered with a 3xx status.
func (r Response) IsRedirect() bool {
	return r.StatusCode >= http.StatusMultipleChoices && r.StatusCode < http.StatusBadRequest
}

// NewRequest builds the upload request for a parsed artifact.
func NewRequest(a *distfile.Artifact, username, password string) Request {
	return Request{
		FilePath:      a.Path,
		FileName:      a.Basename(),
		SignaturePath: a.SignaturePath,
		Fields:        a.FormFields(),
		Username:      username,
		Password:      password,
	}
}

// encodeForm renders the multipart body. The artifact is read whole; index
// uploads are bounded by the server's size limit.
func encodeForm(req Request) (*bytes.Buffer, string, error) {
	name := req.FileName
	if name == "" {
		name = filepath.Base(req.FilePath)
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := make([]distfile.Field, 0, len(req.Fields)+2)
	fields = append(fields,
		distfile.Field{Name: FieldAction, Value: actionFileUpload},
		distfile.Field{Name: FieldProtocolVersion, Value: protocolVersion},
	)
	fields = append(fields, req.Fields...)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", f.Name, err)
		}
	}

	if req.SignaturePath != "" {
		if err := writeFilePart(w, FieldSignature, name+".asc", req.SignaturePath); err != nil {
			return nil, "", err
		}
	}
	if err := writeFilePart(w, FieldContent, name, req.FilePath); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return body, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field, name, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	part, err := w.CreateFormFile(field, name)
	if err != nil {
		return fmt.Errorf("failed to create form part %s: %w", field, err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	return nil
}
