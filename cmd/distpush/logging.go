// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// setupLogging routes slog through a charmbracelet logger writing to w.
func setupLogging(w io.Writer, verbose bool) {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}

	logger := log.NewWithOptions(w, log.Options{
		Prefix: "distpush",
		Level:  level,
	})
	slog.SetDefault(slog.New(logger))
}
