package manifest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// writeRecordingInterpreter creates a fake python whose pip invocation
// is captured instead of executed: the script writes its working
// directory and every argument to recordPath, one per line. The same
// fake-executable technique the interpreter discovery tests use.
func writeRecordingInterpreter(t *testing.T, recordPath string) *model.Interpreter {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "python3")
	script := "#!/bin/sh\n{ pwd; printf '%s\\n' \"$@\"; } > \"" + recordPath + "\"\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return &model.Interpreter{Path: path, Command: "python3", Major: 3, Minor: 11, Patch: 4}
}

// readRecord returns the recorded invocation: the working directory and
// the argument list.
func readRecord(t *testing.T, recordPath string) (string, []string) {
	t.Helper()
	data, err := os.ReadFile(recordPath)
	require.NoError(t, err, "pip was never invoked")
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.NotEmpty(t, lines)
	return lines[0], lines[1:]
}

// TestInstall_RequirementsManifest verifies the pip command line for a
// requirements.txt manifest: "<python> -m pip install -r <manifest>",
// run from the manifest's own directory so relative entries resolve.
func TestInstall_RequirementsManifest(t *testing.T) {
	record := filepath.Join(t.TempDir(), "record")
	interp := writeRecordingInterpreter(t, record)

	m, err := Load(testdataPath(t, "manifests", "requirements-minimal.txt"))
	require.NoError(t, err)

	require.NoError(t, NewInstaller().Install(context.Background(), interp, m, false))

	dir, args := readRecord(t, record)
	assert.Equal(t, []string{"-m", "pip", "install", "-r", m.Path}, args)

	wantDir, err := filepath.EvalSymlinks(filepath.Dir(m.Path))
	require.NoError(t, err)
	gotDir, err := filepath.EvalSymlinks(dir)
	require.NoError(t, err)
	assert.Equal(t, wantDir, gotDir)
}

// TestInstall_Upgrade verifies --upgrade is passed through to pip.
func TestInstall_Upgrade(t *testing.T) {
	record := filepath.Join(t.TempDir(), "record")
	interp := writeRecordingInterpreter(t, record)

	m, err := Load(testdataPath(t, "manifests", "requirements-minimal.txt"))
	require.NoError(t, err)

	require.NoError(t, NewInstaller().Install(context.Background(), interp, m, true))

	_, args := readRecord(t, record)
	assert.Equal(t, []string{"-m", "pip", "install", "--upgrade", "-r", m.Path}, args)
}

// TestInstall_CondaManifest verifies the conda branch: specs are passed
// individually (pip cannot read environment.yml) and the "python" entry,
// which pins the interpreter rather than a package, is skipped.
func TestInstall_CondaManifest(t *testing.T) {
	record := filepath.Join(t.TempDir(), "record")
	interp := writeRecordingInterpreter(t, record)

	m, err := Load(testdataPath(t, "project-conda", "environment.yml"))
	require.NoError(t, err)

	require.NoError(t, NewInstaller().Install(context.Background(), interp, m, false))

	_, args := readRecord(t, record)
	assert.Equal(t, []string{
		"-m", "pip", "install",
		"pip>=23.0", "numpy",
		"fastapi>=0.104.0", "uvicorn>=0.24.0", "langchain",
	}, args)
	assert.NotContains(t, args, "python==3.11")
}

// TestInstall_PipFailure verifies a non-zero pip exit surfaces as a
// CLIError carrying the install exit code.
func TestInstall_PipFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter scripts require a POSIX shell")
	}

	path := filepath.Join(t.TempDir(), "python3")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 3\n"), 0o755))
	interp := &model.Interpreter{Path: path, Command: "python3", Major: 3, Minor: 11}

	m, err := Load(testdataPath(t, "manifests", "requirements-minimal.txt"))
	require.NoError(t, err)

	err = NewInstaller().Install(context.Background(), interp, m, false)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitInstallFailed, cliErr.Code)
}
