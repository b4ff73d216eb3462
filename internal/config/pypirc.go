// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// Keys recognized inside a repository section.
const (
	keyRepository = "repository"
	keyUsername   = "username"
	keyPassword   = "password"
	keyCACert     = "ca_cert"
	keyClientCert = "client_cert"
)

const (
	distutilsSection   = "distutils"
	indexServersKey    = "index-servers"
	serverLoginSection = "server-login"
)

// RepositoryConfig is one resolved repository section of a .pypirc file.
type RepositoryConfig map[string]string

// defaultRepositories are used when no configuration file exists, and fill
// in the URL for well-known names whose section omits "repository".
var defaultRepositories = map[string]string{
	DefaultRepository: DefaultRepositoryURL,
	TestRepository:    TestRepositoryURL,
}

// ReadPypirc parses the .pypirc file at path into repository sections.
//
// A missing file yields the built-in pypi and testpypi entries. An existing
// file yields only the sections it declares: the servers listed under
// [distutils] index-servers (pypi and testpypi when absent), each seeded with
// the legacy [server-login] credentials.
func ReadPypirc(path string) (map[string]RepositoryConfig, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		repos := make(map[string]RepositoryConfig, len(defaultRepositories))
		for name, url := range defaultRepositories {
			repos[name] = RepositoryConfig{keyRepository: url}
		}
		return repos, nil
	}

	file, err := ini.LoadSources(ini.LoadOptions{
		KeyValueDelimiters:         "=:",
		AllowPythonMultilineValues: true,
		IgnoreInlineComment:        true,
	}, path)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	indexServers := []string{DefaultRepository, TestRepository}
	if sec, err := file.GetSection(distutilsSection); err == nil && sec.HasKey(indexServersKey) {
		indexServers = strings.Fields(sec.Key(indexServersKey).String())
	}

	defaults := RepositoryConfig{}
	if sec, err := file.GetSection(serverLoginSection); err == nil {
		for _, k := range []string{keyUsername, keyPassword} {
			if sec.HasKey(k) {
				defaults[k] = sec.Key(k).String()
			}
		}
	}

	repos := make(map[string]RepositoryConfig, len(indexServers))
	for _, name := range indexServers {
		sec, err := file.GetSection(name)
		if err != nil {
			continue
		}

		repo := RepositoryConfig{}
		for k, v := range defaults {
			repo[k] = v
		}
		if url, ok := defaultRepositories[name]; ok {
			repo[keyRepository] = url
		}
		for _, k := range []string{keyRepository, keyUsername, keyPassword, keyCACert, keyClientCert} {
			if sec.HasKey(k) {
				repo[k] = strings.TrimSpace(sec.Key(k).String())
			}
		}
		repos[name] = repo
	}

	return repos, nil
}

// ExpandPath replaces a leading "~" with the user's home directory.
func ExpandPath(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}
