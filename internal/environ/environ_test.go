package environ

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// clearServerEnv unsets the server settings variables for the duration
// of a test, so values leaking in from the host environment cannot
// affect the assertions. t.Setenv also registers cleanup that restores
// the original values.
func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{EnvHost, EnvPort, EnvReload, EnvAPIKey, "SEARCH_API_KEY", "GOOGLE_CX"} {
		t.Setenv(name, "")
		require.NoError(t, os.Unsetenv(name))
	}
}

// TestLoadDotenv verifies that a project .env file is loaded without
// overriding variables already present in the process environment.
func TestLoadDotenv(t *testing.T) {
	clearServerEnv(t)

	dir := t.TempDir()
	dotenv := "API_PORT=9100\nSEARCH_API_KEY=from-dotenv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o644))

	// Pre-set one of the variables; the .env value must not win.
	t.Setenv("SEARCH_API_KEY", "from-process")

	loaded, err := LoadDotenv(dir)
	require.NoError(t, err)
	assert.True(t, loaded)

	assert.Equal(t, "9100", os.Getenv(EnvPort), ".env value applies to unset variables")
	assert.Equal(t, "from-process", os.Getenv("SEARCH_API_KEY"), "process environment beats .env")
}

// TestLoadDotenv_NoFile verifies that a missing .env is the normal case,
// not an error.
func TestLoadDotenv_NoFile(t *testing.T) {
	loaded, err := LoadDotenv(t.TempDir())
	require.NoError(t, err)
	assert.False(t, loaded)
}

// TestResolveSettings_Defaults verifies the launcher defaults with a
// clean environment.
func TestResolveSettings_Defaults(t *testing.T) {
	clearServerEnv(t)

	settings, err := ResolveSettings()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", settings.Host)
	assert.Equal(t, 8000, settings.Port)
	assert.False(t, settings.Reload)
}

// TestResolveSettings_FromEnv verifies environment overrides, including
// the case-insensitive API_RELOAD parsing.
func TestResolveSettings_FromEnv(t *testing.T) {
	clearServerEnv(t)
	t.Setenv(EnvHost, "127.0.0.1")
	t.Setenv(EnvPort, "9000")
	t.Setenv(EnvReload, "True")

	settings, err := ResolveSettings()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", settings.Host)
	assert.Equal(t, 9000, settings.Port)
	assert.True(t, settings.Reload)
}

// TestResolveSettings_BadPort verifies that malformed or out-of-range
// ports are configuration errors, not silent fallbacks.
func TestResolveSettings_BadPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"not a number", "eighty"},
		{"privileged", "80"},
		{"out of range", "70000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearServerEnv(t)
			t.Setenv(EnvPort, tt.port)

			_, err := ResolveSettings()
			require.Error(t, err)

			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, model.ExitConfigError, cliErr.Code)
		})
	}
}

// TestCheckVars verifies the warn-but-continue contract for required
// variables and the informational results for optional ones.
func TestCheckVars(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("GOOGLE_CX", "cx-value")

	results := CheckVars([]string{EnvAPIKey}, []string{"SEARCH_API_KEY", "GOOGLE_CX"})
	require.Len(t, results, 3)

	// Required but unset: warn, never fail.
	assert.Equal(t, "env:OPENAI_API_KEY", results[0].Name)
	assert.Equal(t, model.StatusWarn, results[0].Status)
	assert.Contains(t, results[0].Detail, "not set")

	// Optional unset: pass with a note.
	assert.Equal(t, model.StatusPass, results[1].Status)
	assert.Contains(t, results[1].Detail, "optional")

	// Optional set: pass, and the value itself never appears.
	assert.Equal(t, model.StatusPass, results[2].Status)
	assert.NotContains(t, results[2].Detail, "cx-value", "values must not leak into check output")
}

// TestCheckVars_RequiredSet verifies the pass case for a present key.
func TestCheckVars_RequiredSet(t *testing.T) {
	clearServerEnv(t)
	t.Setenv(EnvAPIKey, "sk-test")

	results := CheckVars([]string{EnvAPIKey}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, model.StatusPass, results[0].Status)
	assert.NotContains(t, results[0].Detail, "sk-test")
}

// TestPassthroughVars verifies that only set variables are forwarded and
// duplicates are collapsed.
func TestPassthroughVars(t *testing.T) {
	clearServerEnv(t)
	t.Setenv(EnvAPIKey, "sk-test")
	t.Setenv(EnvPort, "9000")

	vars := PassthroughVars([]string{EnvAPIKey}, []string{"SEARCH_API_KEY", EnvAPIKey})

	assert.Contains(t, vars, "OPENAI_API_KEY=sk-test")
	assert.Contains(t, vars, "API_PORT=9000")

	// SEARCH_API_KEY is unset and must not be forwarded as empty.
	for _, v := range vars {
		assert.NotContains(t, v, "SEARCH_API_KEY")
	}

	// The duplicated OPENAI_API_KEY entry appears exactly once.
	count := 0
	for _, v := range vars {
		if v == "OPENAI_API_KEY=sk-test" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
