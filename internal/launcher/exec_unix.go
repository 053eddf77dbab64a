//go:build unix

package launcher

import (
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// execProcess replaces the current process image with the given binary
// via execve. On success it does not return.
func execProcess(binary string, argv, env []string) error {
	if err := unix.Exec(binary, argv, env); err != nil {
		return model.WrapCLIError(
			model.ExitLaunchFailed,
			fmt.Sprintf("exec %s failed", binary),
			err,
		)
	}
	// Unreachable: Exec only returns on error.
	return nil
}
