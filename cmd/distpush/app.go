// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"os"

	"github.com/distpush/distpush/internal/config"
	"github.com/distpush/distpush/internal/prompt"
	"github.com/distpush/distpush/internal/repository"
	"github.com/distpush/distpush/internal/signing"
	"github.com/distpush/distpush/internal/upload"
)

type (
	// App wires CLI services and shared dependencies. Cobra handlers receive
	// an App and delegate through its fields, so tests can swap any of them.
	App struct {
		Config     config.Provider
		Transports TransportFactory
		Signer     signing.Signer
		Prompter   config.CredentialPrompter
		stdout     io.Writer
		stderr     io.Writer
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config     config.Provider
		Transports TransportFactory
		// Signer overrides the signing tool named by --sign-with.
		Signer signing.Signer
		// Prompter asks for missing credentials. Defaults to a terminal
		// prompt when stdin is a terminal, and to none otherwise.
		Prompter config.CredentialPrompter
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// TransportFactory creates the transport for resolved settings.
	TransportFactory func(settings *config.Settings) (upload.Transport, error)
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider(os.LookupEnv)
	}
	if deps.Transports == nil {
		deps.Transports = newRepositoryTransport
	}
	if deps.Prompter == nil && prompt.IsInteractive() {
		deps.Prompter = prompt.New()
	}

	return &App{
		Config:     deps.Config,
		Transports: deps.Transports,
		Signer:     deps.Signer,
		Prompter:   deps.Prompter,
		stdout:     deps.Stdout,
		stderr:     deps.Stderr,
	}, nil
}

// newRepositoryTransport builds the HTTP client for settings.
func newRepositoryTransport(settings *config.Settings) (upload.Transport, error) {
	return repository.New(
		repository.WithCACert(settings.CACert),
		repository.WithClientCert(settings.ClientCert),
		repository.WithUserAgent("distpush/"+Version),
	)
}
