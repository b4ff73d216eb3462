// SPDX-License-Identifier: MPL-2.0

package repository

import (
	"log/slog"
	"net/url"

	"github.com/fluxcd/pkg/masktoken"
	"github.com/hashicorp/go-retryablehttp"
)

// newSlogLogger returns a retryablehttp.LeveledLogger that forwards to the
// default slog logger at debug level. Failures are reported to the caller by
// Submit, so the client's own messages are diagnostic only.
func newSlogLogger() retryablehttp.LeveledLogger {
	return slogLogger{}
}

type slogLogger struct{}

func (slogLogger) Error(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (slogLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (slogLogger) Debug(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (slogLogger) Warn(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

// redact masks every occurrence of secret in s.
func redact(s, secret string) string {
	masked, err := masktoken.MaskTokenFromString(s, secret)
	if err != nil {
		return "*****"
	}
	return masked
}

// RedactURL masks the userinfo password of raw and every non-empty secret,
// for URLs that are logged or printed.
func RedactURL(raw string, secrets ...string) string {
	if u, err := url.Parse(raw); err == nil && u.User != nil {
		if pw, ok := u.User.Password(); ok {
			secrets = append(secrets, pw)
		}
	}
	out := raw
	for _, secret := range secrets {
		if secret != "" {
			out = redact(out, secret)
		}
	}
	return out
}
