package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	// rosterBin is the binary built once by TestMain.
	rosterBin string
	// buildErr captures any build failure.
	buildErr error
)

// TestMain builds the roster binary once. With -short the build is skipped
// and the binary tests skip themselves.
func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	tmpDir, err := os.MkdirTemp("", "roster-test-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	rosterBin = filepath.Join(tmpDir, "roster")
	out, err := exec.Command("go", "build", "-o", rosterBin, ".").CombinedOutput()
	if err != nil {
		buildErr = fmt.Errorf("%w: %s", err, out)
	}

	code := m.Run()
	_ = os.RemoveAll(tmpDir)
	os.Exit(code)
}

type runResult struct {
	stdout, stderr string
	code           int
}

func runRoster(t *testing.T, dir string, args ...string) runResult {
	t.Helper()
	if testing.Short() {
		t.Skip("binary tests need a build")
	}
	require.NoError(t, buildErr)

	full := append([]string{
		"--config-dir", filepath.Join(dir, "config"),
		"--data-dir", filepath.Join(dir, "data"),
	}, args...)
	cmd := exec.Command(rosterBin, full...)
	cmd.Env = append(os.Environ(), "ROSTER_BACKEND=", "ROSTER_LOG_LEVEL=")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	} else {
		require.NoError(t, err)
	}
	return runResult{stdout: stdout.String(), stderr: stderr.String(), code: code}
}

func TestBinaryLifecycle(t *testing.T) {
	dir := t.TempDir()

	r := runRoster(t, dir, "init")
	require.Equal(t, 0, r.code, r.stderr)

	r = runRoster(t, dir, "add", "salaried", "--name", "ann lee", "--age", "41",
		"--gender", "f", "--position", "surgeon", "--salary", "5000", "--bonus", "250")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Created salaried worker 1")

	r = runRoster(t, dir, "search", "lee")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Ann Lee")

	r = runRoster(t, dir, "purge")
	require.Equal(t, 0, r.code, r.stderr)
}

func TestBinaryExitCodes(t *testing.T) {
	dir := t.TempDir()

	r := runRoster(t, dir, "show", "hourly", "9")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Error:")

	r = runRoster(t, dir, "list", "contractors")
	assert.Equal(t, 1, r.code)

	r = runRoster(t, dir, "version")
	assert.Equal(t, 0, r.code)
}
