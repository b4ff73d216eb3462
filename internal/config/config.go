// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// Environment variables consulted during resolution.
const (
	EnvRepository    = "DISTPUSH_REPOSITORY"
	EnvRepositoryURL = "DISTPUSH_REPOSITORY_URL"
	EnvUsername      = "DISTPUSH_USERNAME"
	EnvPassword      = "DISTPUSH_PASSWORD"
	EnvCert          = "DISTPUSH_CERT"
	EnvClientCert    = "DISTPUSH_CLIENT_CERT"
	EnvSignWith      = "DISTPUSH_SIGN_WITH"
	EnvIdentity      = "DISTPUSH_IDENTITY"
	EnvComment       = "DISTPUSH_COMMENT"
)

// Viper keys. A section's "repository" entry is stored under keyURL.
const (
	keyName     = "repository"
	keyURL      = "repository_url"
	keySignWith = "sign_with"
	keyIdentity = "identity"
	keyComment  = "comment"
	keyConfig   = "config_file"
)

// envBindings maps viper keys to the environment variables that feed them.
var envBindings = map[string]string{
	keyName:       EnvRepository,
	keyURL:        EnvRepositoryURL,
	keyUsername:   EnvUsername,
	keyPassword:   EnvPassword,
	keyCACert:     EnvCert,
	keyClientCert: EnvClientCert,
	keySignWith:   EnvSignWith,
	keyIdentity:   EnvIdentity,
	keyComment:    EnvComment,
}

// Resolve builds the Settings for one run from explicit options, the
// environment and the configuration file, in that order of precedence.
//
// A repository URL containing "://" is used as given; otherwise the named
// repository section must exist in the configuration file.
func Resolve(ctx context.Context, opts Options, env Environ) (*Settings, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("resolve settings canceled: %w", ctx.Err())
	default:
	}

	if env == nil {
		env = NoEnviron
	}

	v := viper.New()

	// Layers: built-in and file values live in the defaults layer, the
	// environment in the config layer and explicit options in the override
	// layer, which gives explicit > env > file > built-in.
	v.SetDefault(keyName, DefaultRepository)
	v.SetDefault(keySignWith, DefaultSignWith)
	v.SetDefault(keyConfig, DefaultConfigFile)

	envLayer := map[string]any{}
	for key, name := range envBindings {
		if val, ok := env(name); ok && val != "" {
			envLayer[key] = val
		}
	}
	if err := v.MergeConfigMap(envLayer); err != nil {
		return nil, fmt.Errorf("failed to merge environment: %w", err)
	}

	for key, val := range map[string]string{
		keyName:       opts.Repository,
		keyURL:        opts.RepositoryURL,
		keyUsername:   opts.Username,
		keyPassword:   opts.Password,
		keyCACert:     opts.CACert,
		keyClientCert: opts.ClientCert,
		keySignWith:   opts.SignWith,
		keyIdentity:   opts.Identity,
		keyComment:    opts.Comment,
		keyConfig:     opts.ConfigFile,
	} {
		if val != "" {
			v.Set(key, val)
		}
	}

	configFile, err := ExpandPath(v.GetString(keyConfig))
	if err != nil {
		return nil, configErrorf("", err, "cannot locate configuration file: %v", err)
	}
	repository := v.GetString(keyName)

	repositoryURL := v.GetString(keyURL)
	if !strings.Contains(repositoryURL, "://") {
		repos, err := ReadPypirc(configFile)
		if err != nil {
			return nil, configErrorf(configFile, err, "cannot read configuration file %s: %v", configFile, err)
		}
		section, ok := repos[repository]
		if !ok {
			return nil, missingRepositoryError(repository, configFile)
		}
		for k, val := range section {
			if k == keyRepository {
				repositoryURL = val
				continue
			}
			v.SetDefault(k, val)
		}
		slog.Debug("using repository from configuration file", "repository", repository, "config", configFile)
	}

	s := &Settings{
		Repository:    repository,
		RepositoryURL: repositoryURL,
		Username:      v.GetString(keyUsername),
		Password:      v.GetString(keyPassword),
		Sign:          opts.Sign,
		SignWith:      v.GetString(keySignWith),
		Identity:      v.GetString(keyIdentity),
		CACert:        v.GetString(keyCACert),
		ClientCert:    v.GetString(keyClientCert),
		SkipExisting:  opts.SkipExisting,
		Comment:       v.GetString(keyComment),
		ConfigFile:    configFile,
		Verbose:       opts.Verbose,
	}

	if !opts.AllowMissingCredentials {
		if err := fillCredentials(s, opts.Prompter); err != nil {
			return nil, err
		}
	}

	if err := validate(s, opts.AllowMissingCredentials); err != nil {
		return nil, configErrorf(configFile, err, "%v", err)
	}

	return s, nil
}

// fillCredentials prompts for credentials no layer supplied.
func fillCredentials(s *Settings, prompter CredentialPrompter) error {
	if s.Username == "" && prompter != nil {
		u, err := prompter.PromptUsername(s.Repository)
		if err != nil {
			return configErrorf(s.ConfigFile, err, "failed to read username: %v", err)
		}
		s.Username = u
	}
	if s.Password == "" && prompter != nil {
		p, err := prompter.PromptPassword(s.Repository, s.Username)
		if err != nil {
			return configErrorf(s.ConfigFile, err, "failed to read password: %v", err)
		}
		s.Password = p
	}

	var missing []string
	if s.Username == "" {
		missing = append(missing, "username")
	}
	if s.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return configErrorf(s.ConfigFile, ErrMissingCredentials,
			"no %s configured for repository %q: pass --username/--password, set %s/%s, or add them to %s",
			strings.Join(missing, " or "), s.Repository, EnvUsername, EnvPassword, s.ConfigFile)
	}
	return nil
}
