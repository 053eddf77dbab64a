package launcher

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// Run cannot be tested in-process — on success it replaces the test
// binary's process image. The validation layer is tested directly; the
// exec itself is observed by re-invoking the test binary as a child
// whose process image gets replaced by a fake interpreter script.

// TestHandOff_Validate_EntryPointExists verifies the happy path.
func TestHandOff_Validate_EntryPointExists(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "api", "run_api.py"), []byte("print()\n"), 0o644))

	h := &HandOff{
		Interpreter: &model.Interpreter{Path: "/usr/bin/python3"},
		ProjectRoot: root,
		EntryPoint:  "api/run_api.py",
	}
	assert.NoError(t, h.Validate())
}

// TestHandOff_Validate_Missing verifies that a missing entry point is
// reported with ExitEntryPointNotFound, naming the resolved path.
func TestHandOff_Validate_Missing(t *testing.T) {
	root := t.TempDir()

	h := &HandOff{
		Interpreter: &model.Interpreter{Path: "/usr/bin/python3"},
		ProjectRoot: root,
		EntryPoint:  "api/run_api.py",
	}

	err := h.Validate()
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitEntryPointNotFound, cliErr.Code)
	assert.Contains(t, cliErr.Error(), filepath.Join(root, "api", "run_api.py"))
}

// TestHandOff_Run_ExecsFromProjectRoot verifies the hand-off contract:
// the working directory at exec time is the project root — regardless of
// where the launcher was started — and the argv is the interpreter
// followed by the entry point and passthrough args.
//
// The test re-invokes its own binary: the child process calls Run, whose
// exec replaces the child with a fake interpreter script that prints its
// working directory and arguments. The parent asserts on that output.
func TestHandOff_Run_ExecsFromProjectRoot(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("fake interpreter scripts require a POSIX shell")
	}

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "api"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "api", "run_api.py"), []byte("print()\n"), 0o644))

	// The fake interpreter reports where and how it was invoked.
	interp := filepath.Join(t.TempDir(), "python3")
	script := "#!/bin/sh\npwd\nprintf '%s\\n' \"$@\"\n"
	require.NoError(t, os.WriteFile(interp, []byte(script), 0o755))

	cmd := exec.Command(os.Args[0], "-test.run", "^TestHandOffExecChild$")
	// Start the child from an unrelated directory to show the chdir is
	// Run's doing, not inherited from the caller.
	cmd.Dir = t.TempDir()
	cmd.Env = append(os.Environ(),
		"HANDOFF_EXEC_CHILD=1",
		"HANDOFF_EXEC_INTERP="+interp,
		"HANDOFF_EXEC_ROOT="+root,
	)

	out, err := cmd.Output()
	require.NoError(t, err, "child process failed, output: %s", out)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3, "unexpected interpreter output: %q", out)

	// EvalSymlinks on both sides: on some hosts TempDir sits behind a
	// symlink and pwd reports the resolved path.
	wantRoot, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	gotRoot, err := filepath.EvalSymlinks(lines[0])
	require.NoError(t, err)
	assert.Equal(t, wantRoot, gotRoot)

	assert.Equal(t, "api/run_api.py", lines[1])
	assert.Equal(t, "--reload", lines[2])
}

// TestHandOffExecChild is the child half of
// TestHandOff_Run_ExecsFromProjectRoot. In a normal test run it skips.
func TestHandOffExecChild(t *testing.T) {
	if os.Getenv("HANDOFF_EXEC_CHILD") != "1" {
		t.Skip("only runs as a re-invoked child process")
	}

	h := &HandOff{
		Interpreter: &model.Interpreter{Path: os.Getenv("HANDOFF_EXEC_INTERP")},
		ProjectRoot: os.Getenv("HANDOFF_EXEC_ROOT"),
		EntryPoint:  "api/run_api.py",
		Args:        []string{"--reload"},
	}

	// On success this does not return: the process image is replaced by
	// the fake interpreter.
	if err := h.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
