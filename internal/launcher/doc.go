// Package launcher performs the final hand-off to the API server's
// entry point after preflight succeeds.
//
// On Unix the hand-off replaces the launcher's process image with the
// interpreter (execve), so the server inherits the launcher's PID, file
// descriptors, and signal routing — exactly what process supervisors
// expect. Windows has no execve; there the entry point runs as a child
// process and the launcher exits with the child's exit code.
//
// The working directory is switched to the project root before the
// hand-off, regardless of the caller's cwd: the server resolves its own
// modules and data files relative to the project root.
package launcher
