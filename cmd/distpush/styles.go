// SPDX-License-Identifier: MPL-2.0

package cmd

import "github.com/charmbracelet/lipgloss"

// Color palette shared by all CLI output, tuned for dark terminals.
const (
	// ColorPrimary is purple, for titles.
	ColorPrimary = lipgloss.Color("#7C3AED")

	// ColorMuted is gray, for secondary text.
	ColorMuted = lipgloss.Color("#6B7280")

	// ColorSuccess is green, for uploaded files.
	ColorSuccess = lipgloss.Color("#10B981")

	// ColorError is red, for failures.
	ColorError = lipgloss.Color("#EF4444")

	// ColorWarning is amber, for skipped files.
	ColorWarning = lipgloss.Color("#F59E0B")

	// ColorHighlight is blue, for URLs and setting names.
	ColorHighlight = lipgloss.Color("#3B82F6")

	// ColorVerbose is light gray, for verbose details.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

var (
	// TitleStyle is for headers.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	// SubtitleStyle is for secondary text.
	SubtitleStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	// SuccessStyle marks uploaded files.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	// ErrorStyle marks errors and failed files.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorError)

	// WarningStyle marks skipped files.
	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	// CmdStyle is for URLs and setting names.
	CmdStyle = lipgloss.NewStyle().
			Foreground(ColorHighlight)

	// VerboseStyle is for hints and verbose output.
	VerboseStyle = lipgloss.NewStyle().
			Foreground(ColorVerbose)

	// renderLabelStyle labels sections of verbose error output.
	renderLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorWarning)

	// renderValueStyle is for raw server output.
	renderValueStyle = lipgloss.NewStyle().
				Foreground(ColorVerbose)
)
