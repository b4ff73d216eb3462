// SPDX-License-Identifier: MPL-2.0

// Package config resolves the Settings record for one upload run.
//
// Values are layered with Viper, highest precedence first: explicit options
// (command-line flags), DISTPUSH_* environment variables, the matching section
// of the .pypirc configuration file, then built-in defaults. The resolved
// record is validated against an embedded CUE schema (settings_schema.cue)
// before it is handed to the upload session, which never reads the
// environment or configuration files itself.
package config
