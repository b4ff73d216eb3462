// SPDX-License-Identifier: MPL-2.0

// Package signing produces detached ASCII-armored signatures for artifacts
// by running an external signing tool.
package signing

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// DefaultCommand is the signing tool used when none is configured.
const DefaultCommand = "gpg"

// SignatureSuffix is appended to an artifact path to name its signature.
const SignatureSuffix = ".asc"

// ErrSigning is the sentinel wrapped by every signing Error.
var ErrSigning = errors.New("signing failed")

type (
	// Signer produces a detached signature for the file at path and returns
	// the signature's path.
	Signer interface {
		Sign(ctx context.Context, path, identity string) (string, error)
	}

	// Error reports a failed signing attempt. No upload follows it.
	Error struct {
		Path    string
		Command string
		// Output is the tool's combined output, trimmed.
		Output string
		Err    error
	}

	// GPGSigner signs with a gpg-compatible command line:
	// <command> --detach-sign -a [--local-user <identity>] <path>
	GPGSigner struct {
		Command string
	}
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s could not sign %s: %v", e.Command, e.Path, e.Err)
	if e.Output != "" {
		msg += "\n" + e.Output
	}
	return msg
}

// Unwrap returns ErrSigning and the underlying cause.
func (e *Error) Unwrap() []error {
	return []error{ErrSigning, e.Err}
}

// NewGPGSigner returns a GPGSigner running command, or DefaultCommand when empty.
func NewGPGSigner(command string) *GPGSigner {
	if command == "" {
		command = DefaultCommand
	}
	return &GPGSigner{Command: command}
}

// SignaturePath returns where the signature for path is written.
func SignaturePath(path string) string {
	return path + SignatureSuffix
}

// Sign runs the signing tool and checks that it left a signature beside path.
func (s *GPGSigner) Sign(ctx context.Context, path, identity string) (string, error) {
	args := []string{"--detach-sign", "-a"}
	if identity != "" {
		args = append(args, "--local-user", identity)
	}
	args = append(args, path)

	slog.Info("signing", "file", path, "command", s.Command)
	slog.Debug("running signer", "command", s.Command, "args", strings.Join(args, " "))

	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, s.Command, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", &Error{
			Path:    path,
			Command: s.Command,
			Output:  strings.TrimSpace(out.String()),
			Err:     err,
		}
	}

	sig := SignaturePath(path)
	if _, err := os.Stat(sig); err != nil {
		return "", &Error{
			Path:    path,
			Command: s.Command,
			Output:  strings.TrimSpace(out.String()),
			Err:     fmt.Errorf("no signature written: %w", err),
		}
	}
	return sig, nil
}
