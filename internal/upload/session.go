// SPDX-License-Identifier: MPL-2.0

package upload

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/distpush/distpush/internal/config"
	"github.com/distpush/distpush/internal/repository"
	"github.com/distpush/distpush/internal/signing"
	"github.com/distpush/distpush/pkg/distfile"
)

type (
	// Transport submits one upload request. *repository.Client implements it.
	Transport interface {
		Submit(ctx context.Context, url string, req repository.Request) (repository.Response, error)
	}

	// Outcome records what happened to one artifact.
	Outcome struct {
		Artifact *distfile.Artifact
		Status   Status
		Response repository.Response
		// Err is set when Status is StatusFailed.
		Err error
	}

	// Session runs uploads against one transport.
	Session struct {
		transport  Transport
		signer     signing.Signer
		classifier *Classifier
		observer   func(Outcome)
	}

	// SessionOption configures a Session.
	SessionOption func(*Session)
)

// WithSigner sets the signer. Without it a signing.GPGSigner for
// Settings.SignWith is used when signing is requested.
func WithSigner(s signing.Signer) SessionOption {
	return func(sess *Session) {
		sess.signer = s
	}
}

// WithClassifier replaces the default response classifier.
func WithClassifier(c *Classifier) SessionOption {
	return func(sess *Session) {
		sess.classifier = c
	}
}

// WithObserver registers fn to be called with each outcome as it is decided.
func WithObserver(fn func(Outcome)) SessionOption {
	return func(sess *Session) {
		sess.observer = fn
	}
}

// NewSession creates a Session submitting through t.
func NewSession(t Transport, opts ...SessionOption) *Session {
	s := &Session{
		transport:  t,
		classifier: defaultClassifier,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run uploads every artifact in batch, in order, and returns one outcome per
// artifact attempted. On error the outcomes up to and including the failing
// artifact are returned with it.
func (s *Session) Run(ctx context.Context, settings *config.Settings, batch *Batch) ([]Outcome, error) {
	if err := CheckRepository(settings.RepositoryURL); err != nil {
		return nil, err
	}

	signer := s.signer
	if signer == nil && settings.SigningRequested() {
		signer = signing.NewGPGSigner(settings.SignWith)
	}

	slog.Info("uploading distributions", "url", repository.RedactURL(settings.RepositoryURL, settings.Password), "count", batch.Len())

	outcomes := make([]Outcome, 0, batch.Len())
	for _, a := range batch.artifacts {
		if err := ctx.Err(); err != nil {
			return outcomes, fmt.Errorf("upload interrupted: %w", err)
		}

		out := s.uploadOne(ctx, settings, signer, a)
		outcomes = append(outcomes, out)
		if s.observer != nil {
			s.observer(out)
		}
		if out.Status == StatusFailed {
			return outcomes, out.Err
		}
	}
	return outcomes, nil
}

func (s *Session) uploadOne(ctx context.Context, settings *config.Settings, signer signing.Signer, a *distfile.Artifact) Outcome {
	failed := func(err error) Outcome {
		return Outcome{Artifact: a, Status: StatusFailed, Err: err}
	}

	if settings.SigningRequested() {
		signed, err := attachSignature(ctx, signer, settings.Identity, a)
		if err != nil {
			return failed(err)
		}
		a = signed
	}

	slog.Info("uploading", "file", a.Basename())
	req := repository.NewRequest(a, settings.Username, settings.Password)
	resp, err := s.transport.Submit(ctx, settings.RepositoryURL, req)
	if err != nil {
		return failed(err)
	}

	out := Outcome{Artifact: a, Response: resp}
	if resp.IsRedirect() {
		out.Status = StatusFailed
		out.Err = &RedirectError{
			File:       a.Basename(),
			URL:        repository.RedactURL(settings.RepositoryURL, settings.Password),
			Location:   resp.Location,
			StatusCode: resp.StatusCode,
		}
		return out
	}

	out.Status = s.classifier.Classify(resp, settings.SkipExisting)
	switch out.Status {
	case StatusSkipped:
		slog.Warn("skipping file because it appears to already exist", "file", a.Basename())
	case StatusFailed:
		out.Err = &UploadFailedError{
			File:       a.Basename(),
			URL:        repository.RedactURL(settings.RepositoryURL, settings.Password),
			StatusCode: resp.StatusCode,
			Reason:     resp.Reason,
			Body:       resp.Body,
		}
	case StatusUploaded:
		slog.Debug("upload accepted", "file", a.Basename(), "status", resp.StatusCode)
	}
	return out
}

// attachSignature returns a copy of a carrying its signature, signing it
// first when no signature file exists yet.
func attachSignature(ctx context.Context, signer signing.Signer, identity string, a *distfile.Artifact) (*distfile.Artifact, error) {
	sig := signing.SignaturePath(a.Path)
	_, err := os.Stat(sig)
	switch {
	case err == nil:
		slog.Debug("using existing signature", "file", sig)
		return a.WithSignature(sig), nil
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &signing.Error{Path: a.Path, Command: "stat", Err: err}
	}

	sig, err = signer.Sign(ctx, a.Path, identity)
	if err != nil {
		var sErr *signing.Error
		if errors.As(err, &sErr) {
			return nil, err
		}
		return nil, &signing.Error{Path: a.Path, Command: "signer", Err: err}
	}
	return a.WithSignature(sig), nil
}

// CheckRepository rejects the legacy index hosts by exact host match.
// Run calls it before touching any artifact.
func CheckRepository(repositoryURL string) error {
	u, err := url.Parse(repositoryURL)
	if err == nil && slices.Contains(deprecatedHosts, strings.ToLower(u.Hostname())) {
		return &DeprecatedRepositoryError{URL: repository.RedactURL(repositoryURL)}
	}
	return nil
}
