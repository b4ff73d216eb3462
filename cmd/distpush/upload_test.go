// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/distpush/distpush/internal/config"
	"github.com/distpush/distpush/internal/testutil"
	"github.com/distpush/distpush/internal/upload"
)

// indexServer records the files posted to it and answers with status.
type indexServer struct {
	*httptest.Server

	mu     sync.Mutex
	status int
	files  []string
	users  []string
}

func newIndexServer(t *testing.T, status int) *indexServer {
	t.Helper()
	s := &indexServer{status: status}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, header, err := r.FormFile("content")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		user, _, _ := r.BasicAuth()

		s.mu.Lock()
		s.files = append(s.files, header.Filename)
		s.users = append(s.users, user)
		s.mu.Unlock()

		w.WriteHeader(s.status)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *indexServer) uploaded() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.files...)
}

// newTestApp builds an App that reads env from the given map and never prompts.
func newTestApp(t *testing.T, env map[string]string, deps Dependencies) (app *App, stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	deps.Config = config.NewProvider(config.MapEnviron(env))
	deps.Stdout = stdout
	deps.Stderr = stderr
	app, err := NewApp(deps)
	if err != nil {
		t.Fatalf("NewApp() error = %v", err)
	}
	app.Prompter = nil
	return app, stdout, stderr
}

func writeRelease(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testutil.WriteSdist(t, dir, "demo", "1.0")
	testutil.WriteWheel(t, dir, "demo", "1.0")
	return dir
}

func missingConfigFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "missing.pypirc")
}

func TestUpload_WheelFirst(t *testing.T) {
	srv := newIndexServer(t, http.StatusOK)
	dir := writeRelease(t)
	app, stdout, stderr := newTestApp(t, nil, Dependencies{})

	code := app.Run(context.Background(), []string{
		"upload",
		"--repository-url", srv.URL,
		"-u", "alice", "-p", "secret",
		"--config-file", missingConfigFile(t),
		filepath.Join(dir, "*"),
	})
	if code != ExitOK {
		t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, ExitOK, stderr)
	}

	got := srv.uploaded()
	want := []string{"demo-1.0-py3-none-any.whl", "demo-1.0.tar.gz"}
	if len(got) != len(want) {
		t.Fatalf("uploaded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("upload[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if srv.users[0] != "alice" {
		t.Errorf("username = %q, want alice", srv.users[0])
	}

	out := stdout.String()
	if !strings.Contains(out, "Uploading distributions to "+srv.URL) {
		t.Errorf("stdout should name the repository, got:\n%s", out)
	}
	if !strings.Contains(out, "2 uploaded, 0 skipped") {
		t.Errorf("stdout should contain summary, got:\n%s", out)
	}
}

func TestUpload_CredentialsFromEnv(t *testing.T) {
	srv := newIndexServer(t, http.StatusOK)
	dir := t.TempDir()
	whl := testutil.WriteWheel(t, dir, "demo", "1.0")
	app, _, stderr := newTestApp(t, map[string]string{
		config.EnvUsername: "__token__",
		config.EnvPassword: "pypi-abc",
	}, Dependencies{})

	code := app.Run(context.Background(), []string{
		"upload", "--repository-url", srv.URL, "--config-file", missingConfigFile(t), whl,
	})
	if code != ExitOK {
		t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, ExitOK, stderr)
	}
	if srv.users[0] != "__token__" {
		t.Errorf("username = %q, want __token__", srv.users[0])
	}
}

func TestUpload_SkipExisting(t *testing.T) {
	srv := newIndexServer(t, http.StatusConflict)
	dir := writeRelease(t)
	app, stdout, stderr := newTestApp(t, nil, Dependencies{})

	code := app.Run(context.Background(), []string{
		"upload", "--skip-existing",
		"--repository-url", srv.URL,
		"-u", "alice", "-p", "secret",
		"--config-file", missingConfigFile(t),
		filepath.Join(dir, "*"),
	})
	if code != ExitOK {
		t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, ExitOK, stderr)
	}
	if n := len(srv.uploaded()); n != 2 {
		t.Errorf("server saw %d uploads, want 2", n)
	}
	if !strings.Contains(stdout.String(), "0 uploaded, 2 skipped") {
		t.Errorf("stdout should contain summary, got:\n%s", stdout)
	}
}

func TestUpload_ExistingWithoutSkipFails(t *testing.T) {
	srv := newIndexServer(t, http.StatusConflict)
	dir := writeRelease(t)
	app, _, stderr := newTestApp(t, nil, Dependencies{})

	code := app.Run(context.Background(), []string{
		"upload",
		"--repository-url", srv.URL,
		"-u", "alice", "-p", "secret",
		"--config-file", missingConfigFile(t),
		filepath.Join(dir, "*"),
	})
	if code != ExitUploadFailed {
		t.Fatalf("exit code = %d, want %d", code, ExitUploadFailed)
	}
	if n := len(srv.uploaded()); n != 1 {
		t.Errorf("server saw %d uploads, want 1 (run stops at first failure)", n)
	}
	if !strings.Contains(stderr.String(), "--skip-existing") {
		t.Errorf("stderr should suggest --skip-existing, got:\n%s", stderr)
	}
}

func TestUpload_MasksTokenInRepositoryURL(t *testing.T) {
	srv := newIndexServer(t, http.StatusForbidden)
	dir := t.TempDir()
	whl := testutil.WriteWheel(t, dir, "demo", "1.0")
	app, stdout, stderr := newTestApp(t, nil, Dependencies{})

	withToken := strings.Replace(srv.URL, "http://", "http://__token__:pypi-abc@", 1)
	code := app.Run(context.Background(), []string{
		"upload", "--verbose",
		"--repository-url", withToken,
		"-u", "__token__", "-p", "pypi-other",
		"--config-file", missingConfigFile(t),
		whl,
	})
	if code != ExitUploadFailed {
		t.Fatalf("exit code = %d, want %d", code, ExitUploadFailed)
	}
	for name, out := range map[string]string{"stdout": stdout.String(), "stderr": stderr.String()} {
		for _, secret := range []string{"pypi-abc", "pypi-other"} {
			if strings.Contains(out, secret) {
				t.Errorf("%s leaks %q:\n%s", name, secret, out)
			}
		}
	}
}

func TestUpload_DeprecatedRepository(t *testing.T) {
	dir := t.TempDir()
	whl := testutil.WriteWheel(t, dir, "demo", "1.0")
	app, _, stderr := newTestApp(t, nil, Dependencies{
		Transports: func(*config.Settings) (upload.Transport, error) {
			t.Error("transport must not be created for a legacy repository")
			return nil, errors.New("unexpected")
		},
	})

	code := app.Run(context.Background(), []string{
		"upload",
		"--repository-url", "https://pypi.python.org/pypi",
		"-u", "alice", "-p", "secret",
		"--config-file", missingConfigFile(t),
		whl,
	})
	if code != ExitConfig {
		t.Fatalf("exit code = %d, want %d", code, ExitConfig)
	}
	if !strings.Contains(stderr.String(), "legacy PyPI site") {
		t.Errorf("stderr should explain the deprecation, got:\n%s", stderr)
	}
}

func TestUpload_UnsupportedFile(t *testing.T) {
	dir := t.TempDir()
	notes := testutil.MustWriteFile(t, dir, "notes.txt", "hello")
	app, _, stderr := newTestApp(t, nil, Dependencies{})

	code := app.Run(context.Background(), []string{"upload", "-u", "a", "-p", "b", notes})
	if code != ExitConfig {
		t.Fatalf("exit code = %d, want %d", code, ExitConfig)
	}
	if !strings.Contains(stderr.String(), "not a distribution file") {
		t.Errorf("stderr should reject the file, got:\n%s", stderr)
	}
}

func TestUpload_MetadataError(t *testing.T) {
	srv := newIndexServer(t, http.StatusOK)
	dir := t.TempDir()
	broken := testutil.MustWriteFile(t, dir, "demo-1.0-py3-none-any.whl", "not a zip")
	app, _, _ := newTestApp(t, nil, Dependencies{})

	code := app.Run(context.Background(), []string{
		"upload", "--repository-url", srv.URL, "-u", "a", "-p", "b",
		"--config-file", missingConfigFile(t), broken,
	})
	if code != ExitMetadata {
		t.Fatalf("exit code = %d, want %d", code, ExitMetadata)
	}
	if n := len(srv.uploaded()); n != 0 {
		t.Errorf("server saw %d uploads, want 0", n)
	}
}

func TestUpload_MissingCredentials(t *testing.T) {
	srv := newIndexServer(t, http.StatusOK)
	dir := t.TempDir()
	whl := testutil.WriteWheel(t, dir, "demo", "1.0")
	app, _, stderr := newTestApp(t, nil, Dependencies{})

	code := app.Run(context.Background(), []string{
		"upload", "--repository-url", srv.URL, "--config-file", missingConfigFile(t), whl,
	})
	if code != ExitConfig {
		t.Fatalf("exit code = %d, want %d", code, ExitConfig)
	}
	if !strings.Contains(stderr.String(), config.EnvPassword) {
		t.Errorf("stderr should mention %s, got:\n%s", config.EnvPassword, stderr)
	}
}

type failingSigner struct{}

func (failingSigner) Sign(context.Context, string, string) (string, error) {
	return "", errors.New("no secret key")
}

func TestUpload_SigningFailure(t *testing.T) {
	srv := newIndexServer(t, http.StatusOK)
	dir := t.TempDir()
	whl := testutil.WriteWheel(t, dir, "demo", "1.0")
	app, _, _ := newTestApp(t, nil, Dependencies{Signer: failingSigner{}})

	code := app.Run(context.Background(), []string{
		"upload", "--sign", "--repository-url", srv.URL, "-u", "a", "-p", "b",
		"--config-file", missingConfigFile(t), whl,
	})
	if code != ExitSigning {
		t.Fatalf("exit code = %d, want %d", code, ExitSigning)
	}
	if n := len(srv.uploaded()); n != 0 {
		t.Errorf("server saw %d uploads, want 0", n)
	}
	if _, err := os.Stat(whl + ".asc"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("no signature should exist, stat err = %v", err)
	}
}

func TestRun_UnknownFlag(t *testing.T) {
	app, _, _ := newTestApp(t, nil, Dependencies{})

	if code := app.Run(context.Background(), []string{"upload", "--no-such-flag", "x.whl"}); code != ExitConfig {
		t.Errorf("exit code = %d, want %d", code, ExitConfig)
	}
}

func TestConfigShow_MasksPassword(t *testing.T) {
	app, stdout, stderr := newTestApp(t, map[string]string{
		config.EnvPassword: "hunter2",
	}, Dependencies{})

	code := app.Run(context.Background(), []string{"config", "show", "--config-file", missingConfigFile(t)})
	if code != ExitOK {
		t.Fatalf("exit code = %d, want %d; stderr:\n%s", code, ExitOK, stderr)
	}

	out := stdout.String()
	if strings.Contains(out, "hunter2") {
		t.Errorf("password leaked:\n%s", out)
	}
	for _, want := range []string{"*****", config.DefaultRepositoryURL, "repository_url"} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}
