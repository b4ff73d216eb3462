// SPDX-License-Identifier: MPL-2.0

package config

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed settings_schema.cue
var settingsSchema string

// validate checks the resolved settings against the #Settings CUE schema.
// With allowMissingCredentials, empty credentials are not reported.
func validate(s *Settings, allowMissingCredentials bool) error {
	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(settingsSchema, cue.Filename("settings_schema.cue"))
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile settings schema: %w", schemaValue.Err())
	}
	schema := schemaValue.LookupPath(cue.ParsePath("#Settings"))

	username, password := s.Username, s.Password
	if allowMissingCredentials {
		username, password = placeholder(username), placeholder(password)
	}

	value := ctx.Encode(map[string]any{
		"repository":     s.Repository,
		"repository_url": s.RepositoryURL,
		"username":       username,
		"password":       password,
		"sign":           s.Sign,
		"sign_with":      s.SignWith,
		"identity":       s.Identity,
		"ca_cert":        s.CACert,
		"client_cert":    s.ClientCert,
		"skip_existing":  s.SkipExisting,
		"comment":        s.Comment,
		"config_file":    s.ConfigFile,
		"verbose":        s.Verbose,
	})
	if value.Err() != nil {
		return fmt.Errorf("encode settings: %w", value.Err())
	}

	if err := schema.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return formatSchemaError(err)
	}
	return nil
}

func placeholder(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

// formatSchemaError flattens CUE errors into "field: message" lines.
// Messages never echo field values, so the password cannot leak.
func formatSchemaError(err error) error {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		field := strings.Join(cueerrors.Path(e), ".")
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		if field == "password" || field == "username" {
			msg = "must not be empty"
		}
		if field != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", field, msg))
		} else {
			lines = append(lines, msg)
		}
	}
	return fmt.Errorf("invalid settings: %s", strings.Join(lines, "; "))
}
