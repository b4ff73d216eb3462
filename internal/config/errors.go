// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
)

// PypircHelpURL documents the .pypirc format.
const PypircHelpURL = "https://docs.python.org/distutils/packageindex.html#pypirc"

var (
	// ErrConfiguration is the sentinel wrapped by every ConfigurationError.
	ErrConfiguration = errors.New("configuration error")

	// ErrMissingRepository indicates the requested repository has no section in the config file.
	ErrMissingRepository = errors.New("repository not configured")

	// ErrMissingCredentials indicates no layer supplied a username or password.
	ErrMissingCredentials = errors.New("missing credentials")
)

// ConfigurationError reports settings that cannot be resolved into a usable
// upload destination. No upload is attempted after one.
type ConfigurationError struct {
	// ConfigFile is the configuration file involved, if any.
	ConfigFile string
	// Message is the full user-facing message.
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	return e.Message
}

// Unwrap returns the sentinel and the cause.
func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConfiguration}
	}
	return []error{ErrConfiguration, e.Err}
}

func missingRepositoryError(repository, configFile string) error {
	return &ConfigurationError{
		ConfigFile: configFile,
		Message: fmt.Sprintf("Missing '%s' section from the configuration file\n"+
			"or not a complete URL in --repository-url.\n"+
			"Maybe you have a out-dated '%s' format?\n"+
			"more info: %s\n", repository, configFile, PypircHelpURL),
		Err: ErrMissingRepository,
	}
}

func configErrorf(configFile string, cause error, format string, args ...any) error {
	return &ConfigurationError{
		ConfigFile: configFile,
		Message:    fmt.Sprintf(format, args...),
		Err:        cause,
	}
}
