package environ

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// Environment variable names read by the launcher and passed through to
// the API server. These names are part of the server's configuration
// contract and must match what the server reads.
const (
	// EnvAPIKey is the OpenAI API key. Missing is a warning, not an
	// error: the server accepts per-request keys, so a launch without
	// it is degraded but functional.
	EnvAPIKey = "OPENAI_API_KEY"

	// EnvHost is the server bind address.
	EnvHost = "API_HOST"

	// EnvPort is the server TCP port.
	EnvPort = "API_PORT"

	// EnvReload enables the server's auto-reload development mode.
	EnvReload = "API_RELOAD"
)

// Server settings defaults, applied when the corresponding variable is
// unset. These mirror the server's own defaults so `researchctl env`
// reports what the server will actually do.
const (
	DefaultHost = "0.0.0.0"
	DefaultPort = 8000
)

// LoadDotenv loads a .env file from the project root into the process
// environment, if one exists.
//
// godotenv.Load deliberately does NOT override variables that are
// already set, so an exported OPENAI_API_KEY always beats the .env file.
// A missing .env file is the normal case and returns (false, nil).
func LoadDotenv(projectRoot string) (bool, error) {
	path := filepath.Join(projectRoot, ".env")
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	if err := godotenv.Load(path); err != nil {
		return false, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return true, nil
}

// ResolveSettings builds the ServerSettings from the environment,
// applying defaults for unset variables.
//
// A malformed API_PORT is a configuration error rather than a silent
// fallback to the default: launching the server on a different port
// than the user asked for would be worse than refusing to launch.
func ResolveSettings() (*model.ServerSettings, error) {
	settings := &model.ServerSettings{
		Host: DefaultHost,
		Port: DefaultPort,
	}

	if host := os.Getenv(EnvHost); host != "" {
		settings.Host = host
	}

	if portStr := os.Getenv(EnvPort); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("invalid %s value %q", EnvPort, portStr),
				err,
			)
		}
		settings.Port = port
	}

	// API_RELOAD follows the server's own parsing: the literal string
	// "true" (any case) enables reload, everything else disables it.
	settings.Reload = strings.EqualFold(os.Getenv(EnvReload), "true")

	if err := settings.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError, "invalid server settings", err)
	}
	return settings, nil
}

// CheckVars produces one CheckResult per environment variable.
// Required variables yield warn when unset — never fail, per the
// launcher contract — and optional variables always pass, with the
// detail noting whether they are set.
//
// Values are never included in the results; only presence is reported,
// so API keys cannot leak into logs or doctor output.
func CheckVars(required, optional []string) []model.CheckResult {
	results := make([]model.CheckResult, 0, len(required)+len(optional))

	for _, name := range required {
		r := model.CheckResult{Name: "env:" + name}
		if os.Getenv(name) == "" {
			r.Status = model.StatusWarn
			r.Detail = fmt.Sprintf("%s is not set — the API server will reject requests without a per-request key", name)
		} else {
			r.Status = model.StatusPass
			r.Detail = name + " is set"
		}
		results = append(results, r)
	}

	for _, name := range optional {
		r := model.CheckResult{Name: "env:" + name, Status: model.StatusPass}
		if os.Getenv(name) == "" {
			r.Detail = name + " is not set (optional)"
		} else {
			r.Detail = name + " is set"
		}
		results = append(results, r)
	}

	return results
}

// PassthroughVars returns the environment variables (as KEY=value pairs)
// that container-mode launches forward into the container: the API key
// variables and the server settings variables, in that order, skipping
// unset ones.
func PassthroughVars(required, optional []string) []string {
	names := make([]string, 0, len(required)+len(optional)+3)
	names = append(names, required...)
	names = append(names, optional...)
	names = append(names, EnvHost, EnvPort, EnvReload)

	var vars []string
	seen := make(map[string]bool)
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		if v := os.Getenv(name); v != "" {
			vars = append(vars, name+"="+v)
		}
	}
	return vars
}
