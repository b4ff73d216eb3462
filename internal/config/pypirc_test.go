// SPDX-License-Identifier: MPL-2.0

package config

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/distpush/distpush/internal/testutil"
)

func TestReadPypirc_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	repos, err := ReadPypirc(filepath.Join(t.TempDir(), "nope"))
	if err != nil {
		t.Fatalf("ReadPypirc: %v", err)
	}
	if got := repos[DefaultRepository][keyRepository]; got != DefaultRepositoryURL {
		t.Errorf("pypi url = %q", got)
	}
	if got := repos[TestRepository][keyRepository]; got != TestRepositoryURL {
		t.Errorf("testpypi url = %q", got)
	}
}

func TestReadPypirc_ServerLoginSeedsSections(t *testing.T) {
	t.Parallel()

	path := testutil.MustWriteFile(t, t.TempDir(), ".pypirc", `
[server-login]
username:legacy
password:legacypw

[testpypi]
username = override
`)

	repos, err := ReadPypirc(path)
	if err != nil {
		t.Fatalf("ReadPypirc: %v", err)
	}
	if _, ok := repos[DefaultRepository]; ok {
		t.Error("pypi has no section and must not be configured")
	}
	test := repos[TestRepository]
	if test[keyUsername] != "override" {
		t.Errorf("username = %q, want override", test[keyUsername])
	}
	if test[keyPassword] != "legacypw" {
		t.Errorf("password = %q, want legacypw", test[keyPassword])
	}
	if test[keyRepository] != TestRepositoryURL {
		t.Errorf("repository = %q, want %q", test[keyRepository], TestRepositoryURL)
	}
}

func TestReadPypirc_PasswordWithHash(t *testing.T) {
	t.Parallel()

	path := testutil.MustWriteFile(t, t.TempDir(), ".pypirc", "[pypi]\npassword = abc #def\n")

	repos, err := ReadPypirc(path)
	if err != nil {
		t.Fatalf("ReadPypirc: %v", err)
	}
	if got := repos[DefaultRepository][keyPassword]; got != "abc #def" {
		t.Errorf("password = %q, want %q", got, "abc #def")
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	testutil.SetHomeDir(t, home)

	got, err := ExpandPath("~/.pypirc")
	if err != nil {
		t.Fatalf("ExpandPath: %v", err)
	}
	if got != filepath.Join(home, ".pypirc") {
		t.Errorf("ExpandPath = %q", got)
	}

	plain, err := ExpandPath("/etc/pypirc")
	if err != nil || plain != "/etc/pypirc" {
		t.Errorf("ExpandPath(/etc/pypirc) = %q, %v", plain, err)
	}
	if strings.HasPrefix(plain, "~") {
		t.Error("unexpected tilde")
	}
}
