// SPDX-License-Identifier: MPL-2.0

// Package issue turns upload failures into user-facing messages: a short
// error line with suggestions, and a Markdown guide per failure kind that is
// rendered with glamour in verbose mode.
package issue
