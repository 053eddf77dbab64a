// Package model defines the domain types for the researchctl CLI.
//
// All entities in this package represent the launcher's view of the world:
// preflight check outcomes, the discovered Python interpreter, resolved
// server settings, and metadata for container-mode launches. These types
// are used throughout the application for passing data between components.
package model

import (
	"fmt"
	"strings"
	"time"
)

// CheckStatus represents the outcome of a single preflight check.
// The three-level scheme distinguishes conditions that must stop the
// launch (fail) from conditions the user should know about but that
// do not prevent the hand-off (warn).
type CheckStatus string

const (
	// StatusPass indicates the check succeeded with nothing to report.
	StatusPass CheckStatus = "pass"

	// StatusWarn indicates a non-fatal problem. The launch proceeds,
	// but the condition is surfaced to the user (e.g., OPENAI_API_KEY
	// not being set).
	StatusWarn CheckStatus = "warn"

	// StatusFail indicates a fatal problem. The launch must not proceed
	// (e.g., no Python 3 interpreter on PATH).
	StatusFail CheckStatus = "fail"
)

// String returns the string representation of CheckStatus.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands.
func (s CheckStatus) String() string {
	return string(s)
}

// IsValid checks whether the CheckStatus value is one of the
// predefined valid states.
func (s CheckStatus) IsValid() bool {
	switch s {
	case StatusPass, StatusWarn, StatusFail:
		return true
	default:
		return false
	}
}

// ParseCheckStatus converts a string to a CheckStatus.
// Returns an error if the string does not match any valid status.
func ParseCheckStatus(s string) (CheckStatus, error) {
	status := CheckStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid check status: %q (valid: pass, warn, fail)", s)
	}
	return status, nil
}

// CheckResult is the outcome of one preflight check (interpreter present,
// modules importable, env var set, port free, ...). The doctor command
// renders a slice of these as a report; the launch command uses them to
// decide whether to proceed.
type CheckResult struct {
	// Name is a short stable identifier for the check, e.g. "interpreter",
	// "modules", "env:OPENAI_API_KEY", "port".
	Name string `json:"name"`

	// Status is the three-level outcome of the check.
	Status CheckStatus `json:"status"`

	// Detail is a human-readable explanation of the outcome, shown in
	// doctor output. For passing checks this typically names what was
	// found (e.g., the interpreter path and version).
	Detail string `json:"detail,omitempty"`
}

// WorstStatus returns the most severe status among the given results.
// Severity order: fail > warn > pass. An empty slice yields StatusPass,
// because no check has reported a problem.
//
// The launch command treats StatusFail as a stop condition, while the
// doctor command maps the worst status onto its exit code.
func WorstStatus(results []CheckResult) CheckStatus {
	worst := StatusPass
	for _, r := range results {
		switch r.Status {
		case StatusFail:
			// Nothing is more severe than fail — we can stop scanning.
			return StatusFail
		case StatusWarn:
			worst = StatusWarn
		}
	}
	return worst
}

// Interpreter describes a discovered Python interpreter.
// It is produced by the internal/python package and consumed by the
// launch orchestration for module checks, dependency installation,
// and the final process hand-off.
type Interpreter struct {
	// Path is the absolute path to the interpreter executable,
	// as resolved from PATH (e.g., "/usr/bin/python3").
	Path string `json:"path"`

	// Command is the command name the interpreter was found under
	// ("python3" or "python"). Kept for user-facing messages.
	Command string `json:"command"`

	// Major, Minor, Patch are the interpreter version components
	// as reported by the interpreter itself.
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

// Version returns the dotted version string, e.g. "3.11.4".
func (i *Interpreter) Version() string {
	return fmt.Sprintf("%d.%d.%d", i.Major, i.Minor, i.Patch)
}

// AtLeast reports whether the interpreter version is greater than or
// equal to the given major.minor version. The patch level is ignored
// because minimum-version requirements are expressed as major.minor
// (the original project requires Python >= 3.8).
func (i *Interpreter) AtLeast(major, minor int) bool {
	if i.Major != major {
		return i.Major > major
	}
	return i.Minor >= minor
}

// ServerSettings holds the resolved API server configuration.
// Values come from environment variables (API_HOST, API_PORT, API_RELOAD)
// with launcher defaults, optionally overridden by launch flags.
type ServerSettings struct {
	// Host is the bind address passed to the server. Default "0.0.0.0".
	Host string `json:"host"`

	// Port is the TCP port the server will listen on (1024-65535).
	// Default 8000.
	Port int `json:"port"`

	// Reload enables the server's auto-reload development mode.
	Reload bool `json:"reload"`
}

// Validate checks whether the ServerSettings have valid field values.
// The port must be in the unprivileged range — the launcher refuses to
// hand off to a server bound to a privileged or out-of-range port.
func (s *ServerSettings) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("server settings: host must not be empty")
	}
	if s.Port < 1024 || s.Port > 65535 {
		return fmt.Errorf("server settings: port %d out of range (1024-65535)", s.Port)
	}
	return nil
}

// URL returns the base URL the server will be reachable at, for display
// in launch output. A 0.0.0.0 bind address is shown as-is — rewriting it
// to localhost would hide what the server actually binds to.
func (s *ServerSettings) URL() string {
	return fmt.Sprintf("http://%s:%d", s.Host, s.Port)
}

// LaunchMode selects how the entry point is executed after preflight.
type LaunchMode string

const (
	// ModeHost replaces the launcher process image with the interpreter
	// running the entry point (exec on Unix, spawn-and-wait on Windows).
	ModeHost LaunchMode = "host"

	// ModeContainer runs the entry point inside a Docker container,
	// with the project directory bind-mounted and the API port published.
	ModeContainer LaunchMode = "container"
)

// String returns the string representation of LaunchMode.
func (m LaunchMode) String() string {
	return string(m)
}

// IsValid checks whether the LaunchMode value is one of the
// predefined valid modes.
func (m LaunchMode) IsValid() bool {
	return m == ModeHost || m == ModeContainer
}

// ContainerInfo holds runtime information about a Docker container that
// researchctl launched in container mode. This data is fetched dynamically
// from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// Project is the project name the launch belongs to, taken from
	// the researchctl.project label.
	Project string `json:"project"`

	// EntryPoint is the entry point script the container runs, taken
	// from the researchctl.entry-point label.
	EntryPoint string `json:"entryPoint"`

	// Port is the published API port, or 0 if the label is absent.
	Port int `json:"port"`

	// Status is the Docker container status (e.g., "running", "exited").
	Status string `json:"status"`

	// CreatedAt is the launch timestamp recorded in the labels.
	CreatedAt time.Time `json:"createdAt"`

	// Labels is the full set of Docker labels on the container.
	Labels map[string]string `json:"labels,omitempty"`
}

// ExitCode defines standard CLI exit codes. These codes allow scripts
// and CI systems to programmatically determine the outcome of a command.
//
// Exit code 1 for a missing interpreter is part of the launcher's
// external contract and must not change.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitInterpreterNotFound indicates no Python 3 interpreter was
	// discoverable on PATH (or the discovered one is too old).
	ExitInterpreterNotFound ExitCode = 1

	// ExitConfigError indicates the launcher configuration is invalid
	// (bad researchctl.json, out-of-range port, unknown flag value).
	ExitConfigError ExitCode = 2

	// ExitManifestNotFound indicates no dependency manifest was found
	// when one was required for installation.
	ExitManifestNotFound ExitCode = 3

	// ExitInstallFailed indicates dependency installation from the
	// manifest failed.
	ExitInstallFailed ExitCode = 4

	// ExitDockerNotRunning indicates the Docker daemon is not accessible
	// (container mode and ps/stop commands only).
	ExitDockerNotRunning ExitCode = 5

	// ExitEntryPointNotFound indicates the configured entry point script
	// does not exist in the project directory.
	ExitEntryPointNotFound ExitCode = 6

	// ExitLaunchFailed indicates the final hand-off to the entry point
	// could not be performed.
	ExitLaunchFailed ExitCode = 7
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
