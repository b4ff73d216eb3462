// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultTimeout bounds one upload request, body included.
	DefaultTimeout = 5 * time.Minute

	// DefaultUserAgent is sent when no WithUserAgent option is given.
	DefaultUserAgent = "distpush"

	// maxResponseBytes caps how much of a response body is kept for reporting.
	maxResponseBytes = 64 << 10
)

// ErrTLSConfig is returned when a CA bundle or client certificate cannot be loaded.
var ErrTLSConfig = errors.New("invalid TLS configuration")

type (
	// Client uploads files to a package index.
	Client struct {
		httpClient *retryablehttp.Client
		timeout    time.Duration
		userAgent  string
		caCert     string
		clientCert string
		base       *http.Client
	}

	// Option configures a Client during construction.
	Option func(*Client)
)

// WithHTTPClient sets the underlying HTTP client, useful for tests.
// Its redirect policy is replaced so that 3xx responses reach the caller.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.base = c
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.timeout = d
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(cl *Client) {
		cl.userAgent = ua
	}
}

// WithCACert trusts the PEM certificates in path instead of the system pool.
func WithCACert(path string) Option {
	return func(cl *Client) {
		cl.caCert = path
	}
}

// WithClientCert presents the PEM certificate and key in path to the server.
func WithClientCert(path string) Option {
	return func(cl *Client) {
		cl.clientCert = path
	}
}

// New creates a Client. TLS files named by options are loaded eagerly so that
// a bad path fails before any artifact is read.
func New(opts ...Option) (*Client, error) {
	c := &Client{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.CheckRetry = noRetry
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	rc.Logger = newSlogLogger()

	if c.base != nil {
		base := *c.base
		rc.HTTPClient = &base
	}
	if c.caCert != "" || c.clientCert != "" {
		tlsConfig, err := c.tlsConfig()
		if err != nil {
			return nil, err
		}
		rt := rc.HTTPClient.Transport
		if rt == nil {
			rt = http.DefaultTransport
		}
		transport, ok := rt.(*http.Transport)
		if !ok {
			return nil, fmt.Errorf("%w: custom HTTP transport cannot carry certificates", ErrTLSConfig)
		}
		transport = transport.Clone()
		transport.TLSClientConfig = tlsConfig
		rc.HTTPClient.Transport = transport
	}
	rc.HTTPClient.Timeout = c.timeout
	rc.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	c.httpClient = rc
	return c, nil
}

// Submit uploads one file to url and returns the server's reply. A non-nil
// error means no reply was received; any HTTP status, 4xx and 5xx included,
// is returned as a Response.
func (c *Client) Submit(ctx context.Context, url string, req Request) (Response, error) {
	body, contentType, err := encodeForm(req)
	if err != nil {
		return Response{}, err
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return Response{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.SetBasicAuth(req.Username, req.Password)

	slog.Debug("submitting upload", "url", RedactURL(url, req.Password), "file", req.FileName, "bytes", body.Len())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return Response{}, fmt.Errorf("upload of %s failed: %w", req.FileName, err)
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Response{}, fmt.Errorf("failed to read upload response: %w", err)
	}

	return Response{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		Location:   resp.Header.Get("Location"),
		Body:       string(text),
	}, nil
}

func (c *Client) tlsConfig() (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if c.caCert != "" {
		pem, err := os.ReadFile(c.caCert)
		if err != nil {
			return nil, fmt.Errorf("%w: read CA bundle: %w", ErrTLSConfig, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: no certificates found in %s", ErrTLSConfig, c.caCert)
		}
		cfg.RootCAs = pool
	}

	if c.clientCert != "" {
		// The client certificate file holds both the certificate and its key.
		pair, err := tls.LoadX509KeyPair(c.clientCert, c.clientCert)
		if err != nil {
			return nil, fmt.Errorf("%w: load client certificate: %w", ErrTLSConfig, err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	return cfg, nil
}

// reasonPhrase returns the status text as sent by the server, which indexes
// use to explain rejections.
func reasonPhrase(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, code))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func noRetry(ctx context.Context, _ *http.Response, _ error) (bool, error) {
	return false, ctx.Err()
}
