package launcher

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// HandOff describes the final delegation to the entry point.
type HandOff struct {
	// Interpreter is the discovered Python interpreter.
	Interpreter *model.Interpreter

	// ProjectRoot is the directory the process chdirs to before the
	// hand-off.
	ProjectRoot string

	// EntryPoint is the script path relative to ProjectRoot.
	EntryPoint string

	// Args are extra arguments passed through to the entry point.
	Args []string
}

// Validate checks that the hand-off is performable: the entry point must
// exist inside the project root. This runs during preflight so doctor
// can report a missing entry point without attempting a launch.
func (h *HandOff) Validate() error {
	path := filepath.Join(h.ProjectRoot, h.EntryPoint)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return model.NewCLIError(
				model.ExitEntryPointNotFound,
				fmt.Sprintf("entry point not found: %s", path),
			)
		}
		return model.WrapCLIError(model.ExitLaunchFailed, fmt.Sprintf("cannot access entry point %s", path), err)
	}
	return nil
}

// Run performs the hand-off. On success on Unix this function does not
// return — the process image has been replaced. On Windows it returns
// only on spawn failure; otherwise it exits the process with the child's
// exit code.
//
// The chdir happens here, immediately before the exec, so every earlier
// launcher step (manifest resolution, .env loading) has already resolved
// its paths explicitly against the project root rather than relying on
// the cwd.
func (h *HandOff) Run() error {
	if err := h.Validate(); err != nil {
		return err
	}

	if err := os.Chdir(h.ProjectRoot); err != nil {
		return model.WrapCLIError(
			model.ExitLaunchFailed,
			fmt.Sprintf("failed to change directory to %s", h.ProjectRoot),
			err,
		)
	}

	// argv[0] is the interpreter path by convention; the entry point is
	// now relative to the cwd we just switched to.
	argv := append([]string{h.Interpreter.Path, h.EntryPoint}, h.Args...)

	return execProcess(h.Interpreter.Path, argv, os.Environ())
}
