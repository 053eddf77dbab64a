//go:build windows

package launcher

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// execProcess approximates execve on Windows, which has no process-image
// replacement: the entry point runs as a child wired to the launcher's
// stdio, and the launcher exits with the child's exit code so callers
// observe the same contract as on Unix.
func execProcess(binary string, argv, env []string) error {
	cmd := exec.Command(binary, argv[1:]...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return model.WrapCLIError(
			model.ExitLaunchFailed,
			fmt.Sprintf("failed to start %s", binary),
			err,
		)
	}

	os.Exit(0)
	return nil
}
