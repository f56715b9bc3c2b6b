package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vk/assetgrid/internal/cli"
)

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// A catalog with a syntax error makes app.NewApp panic during loading.
	invalidHCL := `
		script "a" {
			src = "a.js"
		// Missing closing brace here
	`
	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(invalidHCL), 0o600), "failed to set up test file")

	args := []string{"validate", "--catalog", filePath}
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}

	// --- Act ---
	runErr := run(out, errOut, args)

	// --- Assert ---
	require.Error(t, runErr, "run() should have returned an error after recovering from a panic")
	require.Contains(t, runErr.Error(), "application panicked")
	require.Contains(t, runErr.Error(), "failed to parse")
}

func TestRun_RuntimePanicRecovery(t *testing.T) {
	t.Parallel()

	// The gate passes the load-time dry run but cannot be converted to a
	// bool once the option holds a string.
	catalogHCL := `
script "a" {
  src  = "a.js"
  when = option_value("mode") == null ? true : option_value("mode")
}
`
	filePath := filepath.Join(t.TempDir(), "main.hcl")
	require.NoError(t, os.WriteFile(filePath, []byte(catalogHCL), 0o600))

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	runErr := run(out, errOut, []string{"resolve", "--catalog", filePath, "--option", "mode=fast"})

	require.Error(t, runErr)
	require.Contains(t, runErr.Error(), "application panicked")
	require.NotContains(t, runErr.Error(), "startup")
	require.Contains(t, runErr.Error(), "catalog:")
}

func TestRun_Help(t *testing.T) {
	t.Parallel()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(out, errOut, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	err := run(out, errOut, []string{"--this-is-not-a-valid-flag"})

	require.Error(t, err, "run() should return an error when argument parsing fails")
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 2, exitErr.Code)
	require.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_Validate(t *testing.T) {
	t.Parallel()

	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	require.NoError(t, run(out, errOut, []string{"validate"}))
	require.Contains(t, out.String(), "catalog OK:")
}
