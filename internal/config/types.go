// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"strings"
)

const (
	// DefaultRepository is the repository name used when none is given.
	DefaultRepository = "pypi"
	// TestRepository is the well-known name of the test index.
	TestRepository = "testpypi"

	// DefaultRepositoryURL is the upload endpoint of the public index.
	DefaultRepositoryURL = "https://upload.pypi.org/legacy/"
	// TestRepositoryURL is the upload endpoint of the public test index.
	TestRepositoryURL = "https://test.pypi.org/legacy/"

	// DefaultSignWith is the signing tool used when none is given.
	DefaultSignWith = "gpg"

	// DefaultConfigFile is the .pypirc location used when none is given.
	DefaultConfigFile = "~/.pypirc"
)

type (
	// Settings is the resolved, read-only configuration for one upload run.
	Settings struct {
		// Repository is the name of the .pypirc section that was used.
		Repository string
		// RepositoryURL is the upload endpoint.
		RepositoryURL string
		Username      string
		Password      string
		// Sign requests a detached signature for every artifact.
		Sign bool
		// SignWith is the signing executable (gpg-compatible).
		SignWith string
		// Identity selects the signing key; setting it implies Sign.
		Identity string
		// CACert is a PEM bundle used to verify the index's certificate.
		CACert string
		// ClientCert is a PEM file holding a client certificate and key.
		ClientCert string
		// SkipExisting treats files already present on the index as success.
		SkipExisting bool
		// Comment is attached to every upload.
		Comment string
		// ConfigFile is the expanded path of the .pypirc that was consulted.
		ConfigFile string
		Verbose    bool
	}

	// Options carries explicit values, typically from command-line flags.
	// Empty strings mean "not given" and fall through to lower layers.
	Options struct {
		Repository    string
		RepositoryURL string
		Username      string
		Password      string
		Sign          bool
		SignWith      string
		Identity      string
		CACert        string
		ClientCert    string
		SkipExisting  bool
		Comment       string
		ConfigFile    string
		Verbose       bool

		// Prompter is asked for credentials that no layer provides.
		// When nil, missing credentials are a ConfigurationError.
		Prompter CredentialPrompter

		// AllowMissingCredentials resolves settings without a username or
		// password, for display.
		AllowMissingCredentials bool
	}

	// CredentialPrompter asks the user for credentials interactively.
	CredentialPrompter interface {
		PromptUsername(repository string) (string, error)
		PromptPassword(repository, username string) (string, error)
	}

	// Environ looks up an environment variable. os.LookupEnv satisfies it.
	Environ func(key string) (string, bool)
)

// SigningRequested reports whether artifacts must be signed before upload.
func (s *Settings) SigningRequested() bool {
	return s.Sign || s.Identity != ""
}

// String renders the settings for display with the password masked.
func (s *Settings) String() string {
	var sb strings.Builder
	row := func(k string, v any) {
		fmt.Fprintf(&sb, "%-15s %v\n", k+":", v)
	}
	password := ""
	if s.Password != "" {
		password = "*****"
	}
	row("repository", s.Repository)
	row("repository_url", s.RepositoryURL)
	row("username", s.Username)
	row("password", password)
	row("sign", s.SigningRequested())
	row("sign_with", s.SignWith)
	row("identity", s.Identity)
	row("ca_cert", s.CACert)
	row("client_cert", s.ClientCert)
	row("skip_existing", s.SkipExisting)
	row("comment", s.Comment)
	row("config_file", s.ConfigFile)
	return sb.String()
}

// NoEnviron is an Environ with no variables set.
func NoEnviron(string) (string, bool) { return "", false }

// MapEnviron adapts a map to Environ.
func MapEnviron(m map[string]string) Environ {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}
