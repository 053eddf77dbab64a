package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCheckStatus_String verifies that CheckStatus values produce
// the expected string representations for CLI output and JSON serialization.
func TestCheckStatus_String(t *testing.T) {
	tests := []struct {
		status   CheckStatus
		expected string
	}{
		{StatusPass, "pass"},
		{StatusWarn, "warn"},
		{StatusFail, "fail"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

// TestCheckStatus_IsValid checks that only defined status values pass validation.
func TestCheckStatus_IsValid(t *testing.T) {
	assert.True(t, StatusPass.IsValid())
	assert.True(t, StatusWarn.IsValid())
	assert.True(t, StatusFail.IsValid())
	assert.False(t, CheckStatus("invalid").IsValid())
	assert.False(t, CheckStatus("").IsValid())
}

// TestParseCheckStatus verifies string-to-status conversion,
// including case normalization and error cases.
func TestParseCheckStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected CheckStatus
		hasError bool
	}{
		{"pass", StatusPass, false},
		{"warn", StatusWarn, false},
		{"fail", StatusFail, false},
		{"Pass", StatusPass, false}, // case insensitive
		{"FAIL", StatusFail, false}, // case insensitive
		{"invalid", "", true},       // unknown value
		{"", "", true},              // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseCheckStatus(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestWorstStatus verifies severity aggregation across check results.
// The launch command relies on fail taking precedence over warn, and
// warn over pass.
func TestWorstStatus(t *testing.T) {
	tests := []struct {
		name     string
		results  []CheckResult
		expected CheckStatus
	}{
		{"empty", nil, StatusPass},
		{"all pass", []CheckResult{{Status: StatusPass}, {Status: StatusPass}}, StatusPass},
		{"warn among pass", []CheckResult{{Status: StatusPass}, {Status: StatusWarn}}, StatusWarn},
		{"fail among warn", []CheckResult{{Status: StatusWarn}, {Status: StatusFail}}, StatusFail},
		{"fail first", []CheckResult{{Status: StatusFail}, {Status: StatusPass}}, StatusFail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, WorstStatus(tt.results))
		})
	}
}

// TestInterpreter_Version verifies the dotted version string formatting.
func TestInterpreter_Version(t *testing.T) {
	interp := &Interpreter{Path: "/usr/bin/python3", Command: "python3", Major: 3, Minor: 11, Patch: 4}
	assert.Equal(t, "3.11.4", interp.Version())
}

// TestInterpreter_AtLeast verifies minimum-version comparison semantics.
// The patch level must be ignored — requirements are major.minor only.
func TestInterpreter_AtLeast(t *testing.T) {
	tests := []struct {
		name     string
		interp   Interpreter
		major    int
		minor    int
		expected bool
	}{
		{"equal version", Interpreter{Major: 3, Minor: 8}, 3, 8, true},
		{"newer minor", Interpreter{Major: 3, Minor: 11}, 3, 8, true},
		{"older minor", Interpreter{Major: 3, Minor: 7}, 3, 8, false},
		{"newer major", Interpreter{Major: 4, Minor: 0}, 3, 8, true},
		{"older major", Interpreter{Major: 2, Minor: 7}, 3, 8, false},
		{"patch ignored", Interpreter{Major: 3, Minor: 8, Patch: 0}, 3, 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.interp.AtLeast(tt.major, tt.minor))
		})
	}
}

// TestServerSettings_Validate checks the port-range and host validation
// rules applied before hand-off.
func TestServerSettings_Validate(t *testing.T) {
	tests := []struct {
		name     string
		settings ServerSettings
		hasError bool
	}{
		{"valid defaults", ServerSettings{Host: "0.0.0.0", Port: 8000}, false},
		{"valid high port", ServerSettings{Host: "127.0.0.1", Port: 65535}, false},
		{"valid low edge", ServerSettings{Host: "localhost", Port: 1024}, false},
		{"privileged port", ServerSettings{Host: "0.0.0.0", Port: 80}, true},
		{"port too high", ServerSettings{Host: "0.0.0.0", Port: 70000}, true},
		{"zero port", ServerSettings{Host: "0.0.0.0", Port: 0}, true},
		{"empty host", ServerSettings{Host: "", Port: 8000}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestServerSettings_URL verifies the display URL formatting.
func TestServerSettings_URL(t *testing.T) {
	s := ServerSettings{Host: "0.0.0.0", Port: 8000}
	assert.Equal(t, "http://0.0.0.0:8000", s.URL())
}

// TestLaunchMode_IsValid checks that only the defined modes pass validation.
func TestLaunchMode_IsValid(t *testing.T) {
	assert.True(t, ModeHost.IsValid())
	assert.True(t, ModeContainer.IsValid())
	assert.False(t, LaunchMode("vm").IsValid())
	assert.False(t, LaunchMode("").IsValid())
}

// TestCLIError_Error verifies error message formatting with and without
// an underlying error.
func TestCLIError_Error(t *testing.T) {
	// Without an underlying error, only the message is returned.
	err := NewCLIError(ExitInterpreterNotFound, "no Python 3 interpreter found")
	assert.Equal(t, "no Python 3 interpreter found", err.Error())

	// With an underlying error, the message and cause are joined.
	underlying := errors.New("exec: \"python3\": executable file not found in $PATH")
	wrapped := WrapCLIError(ExitInterpreterNotFound, "no Python 3 interpreter found", underlying)
	assert.Contains(t, wrapped.Error(), "no Python 3 interpreter found")
	assert.Contains(t, wrapped.Error(), "executable file not found")
}

// TestCLIError_Unwrap verifies that errors.Is can see through CLIError
// to the underlying cause, per Go 1.13 error wrapping conventions.
func TestCLIError_Unwrap(t *testing.T) {
	underlying := errors.New("root cause")
	wrapped := WrapCLIError(ExitInstallFailed, "pip install failed", underlying)

	assert.True(t, errors.Is(wrapped, underlying))
	assert.Equal(t, underlying, wrapped.Unwrap())

	// A CLIError without a cause unwraps to nil.
	bare := NewCLIError(ExitConfigError, "bad config")
	assert.Nil(t, bare.Unwrap())
}

// TestExitCodes verifies the numeric values of the exit code contract.
// Exit code 1 for a missing interpreter is externally observable behavior
// and must not drift.
func TestExitCodes(t *testing.T) {
	assert.Equal(t, ExitCode(0), ExitSuccess)
	assert.Equal(t, ExitCode(1), ExitInterpreterNotFound)
	assert.Equal(t, ExitCode(2), ExitConfigError)
	assert.Equal(t, ExitCode(3), ExitManifestNotFound)
	assert.Equal(t, ExitCode(4), ExitInstallFailed)
	assert.Equal(t, ExitCode(5), ExitDockerNotRunning)
	assert.Equal(t, ExitCode(6), ExitEntryPointNotFound)
	assert.Equal(t, ExitCode(7), ExitLaunchFailed)
}
