// SPDX-License-Identifier: MPL-2.0

// Package prompt asks the user for repository credentials on the terminal.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrEmptyValue is returned when the user submits an empty answer.
var ErrEmptyValue = errors.New("value must not be empty")

type (
	// Prompter asks for credentials with huh forms. It satisfies
	// config.CredentialPrompter.
	Prompter struct {
		accessible bool
		ask        askFunc
	}

	// Option configures a Prompter.
	Option func(*Prompter)

	askFunc func(title, description string, secret, accessible bool) (string, error)
)

// WithAccessible switches huh to its line-based accessible mode.
func WithAccessible(accessible bool) Option {
	return func(p *Prompter) {
		p.accessible = accessible
	}
}

// New returns a Prompter. Accessible mode is enabled when ACCESSIBLE is set.
func New(opts ...Option) *Prompter {
	p := &Prompter{
		accessible: os.Getenv("ACCESSIBLE") != "",
		ask:        askHuh,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsInteractive reports whether stdin is a terminal, so prompting can work.
func IsInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// PromptUsername asks for the username for repository.
func (p *Prompter) PromptUsername(repository string) (string, error) {
	v, err := p.ask("Enter your username", "Repository: "+repository, false, p.accessible)
	if err != nil {
		return "", fmt.Errorf("username prompt: %w", err)
	}
	return strings.TrimSpace(v), nil
}

// PromptPassword asks for the password of username on repository.
func (p *Prompter) PromptPassword(repository, username string) (string, error) {
	desc := "Repository: " + repository
	if username != "" {
		desc += ", user: " + username
	}
	v, err := p.ask("Enter your password", desc, true, p.accessible)
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	return v, nil
}

func askHuh(title, description string, secret, accessible bool) (string, error) {
	var value string

	input := huh.NewInput().
		Title(title).
		Description(description).
		Value(&value).
		Validate(notEmpty)
	if secret {
		input = input.EchoMode(huh.EchoModePassword)
	}

	form := huh.NewForm(huh.NewGroup(input)).
		WithAccessible(accessible).
		WithOutput(os.Stderr)

	if err := form.Run(); err != nil {
		return "", err
	}
	return value, nil
}

func notEmpty(s string) error {
	if strings.TrimSpace(s) == "" {
		return ErrEmptyValue
	}
	return nil
}
