// Package config — config.go implements loading of researchctl.json.
//
// The launcher works without any config file: every field has a default
// matching the original launcher's fixed behavior (entry point
// api/run_api.py, required modules fastapi/uvicorn/langchain, manifest
// requirements.txt). A config file only overrides the defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// Default values applied when no researchctl.json is present or when
// a field is omitted. These mirror the behavior of the original launcher
// script, which hardcoded all of them.
const (
	// DefaultEntryPoint is the script handed control after preflight,
	// relative to the project root.
	DefaultEntryPoint = "api/run_api.py"

	// DefaultManifest is the dependency manifest consulted when required
	// modules are missing.
	DefaultManifest = "requirements.txt"

	// DefaultImage is the container image used for container-mode launches.
	DefaultImage = "python:3.11-slim"
)

// DefaultRequiredModules returns the modules whose importability is
// verified before launch. A fresh slice is returned on every call so
// callers can append without mutating shared state.
func DefaultRequiredModules() []string {
	return []string{"fastapi", "uvicorn", "langchain"}
}

// DefaultRequiredEnv returns the environment variables the launcher warns
// about when unset. OPENAI_API_KEY missing is a warning, not an error —
// the server accepts per-request keys, so launch proceeds.
func DefaultRequiredEnv() []string {
	return []string{"OPENAI_API_KEY"}
}

// DefaultOptionalEnv returns environment variables that are reported in
// doctor/env output but never produce a warning.
func DefaultOptionalEnv() []string {
	return []string{"SEARCH_API_KEY", "GOOGLE_CX"}
}

// Config is the parsed launcher configuration for a project.
// Fields left empty in researchctl.json keep their defaults;
// ApplyDefaults fills them in after parsing.
type Config struct {
	// Name is a display name for the project, used as the default
	// container name in container mode. Defaults to the project
	// directory's base name.
	Name string `json:"name,omitempty"`

	// EntryPoint is the script executed after preflight, relative to
	// the project root.
	EntryPoint string `json:"entryPoint,omitempty"`

	// Manifest is the dependency manifest path, relative to the project
	// root. Both pip requirements files and conda environment.yml files
	// are supported (see internal/manifest).
	Manifest string `json:"manifest,omitempty"`

	// RequiredModules lists the Python modules whose importability is
	// checked before launch. A missing module triggers installation
	// from the manifest.
	RequiredModules []string `json:"requiredModules,omitempty"`

	// RequiredEnv lists environment variables that produce a warning
	// when unset. The launch still proceeds.
	RequiredEnv []string `json:"requiredEnv,omitempty"`

	// OptionalEnv lists environment variables reported for information
	// only.
	OptionalEnv []string `json:"optionalEnv,omitempty"`

	// Image is the container image for container-mode launches.
	Image string `json:"image,omitempty"`

	// MinPythonMajor/MinPythonMinor specify the minimum accepted
	// interpreter version. Zero values default to 3.8.
	MinPythonMajor int `json:"minPythonMajor,omitempty"`
	MinPythonMinor int `json:"minPythonMinor,omitempty"`
}

// ConfigFileName is the launcher config file searched for in the
// project root.
const ConfigFileName = "researchctl.json"

// Load reads a researchctl.json file, strips JSONC comments, and parses
// it into a Config with defaults applied.
//
// The function uses github.com/tidwall/jsonc to handle JSONC (JSON with
// Comments) format, so users can annotate their launcher config the same
// way devcontainer.json files are annotated. After stripping comments,
// it uses the standard encoding/json for parsing.
//
// Returns a CLIError with ExitConfigError if the file exists but cannot
// be parsed.
func Load(configPath string) (*Config, error) {
	// os.ReadFile handles the open-read-close lifecycle in a single call.
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("launcher config not found: %s", configPath),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
	}

	// Strip JSONC comments (// and /* */) and trailing commas before
	// parsing with the standard library.
	cleanJSON := jsonc.ToJSON(data)

	var cfg Config
	if err := json.Unmarshal(cleanJSON, &cfg); err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to parse %s", configPath),
			err,
		)
	}

	cfg.ApplyDefaults(filepath.Dir(configPath))
	return &cfg, nil
}

// LoadOrDefault loads the config from the project root if a
// researchctl.json is present, and otherwise returns a pure-default
// Config. Only a file that exists but fails to parse is an error —
// absence of the file is the normal case.
func LoadOrDefault(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		cfg := &Config{}
		cfg.ApplyDefaults(projectRoot)
		return cfg, nil
	}
	return Load(path)
}

// ApplyDefaults fills zero-valued fields with the launcher defaults.
// projectRoot is used to derive the default project name.
func (c *Config) ApplyDefaults(projectRoot string) {
	if c.Name == "" {
		c.Name = filepath.Base(projectRoot)
	}
	if c.EntryPoint == "" {
		c.EntryPoint = DefaultEntryPoint
	}
	if c.Manifest == "" {
		c.Manifest = DefaultManifest
	}
	if len(c.RequiredModules) == 0 {
		c.RequiredModules = DefaultRequiredModules()
	}
	if len(c.RequiredEnv) == 0 {
		c.RequiredEnv = DefaultRequiredEnv()
	}
	if len(c.OptionalEnv) == 0 {
		c.OptionalEnv = DefaultOptionalEnv()
	}
	if c.Image == "" {
		c.Image = DefaultImage
	}
	// The 3.8 minimum applies only when the config says nothing at all
	// about the interpreter version. A config that sets minPythonMajor
	// alone means "that major, any minor".
	if c.MinPythonMajor == 0 && c.MinPythonMinor == 0 {
		c.MinPythonMajor = 3
		c.MinPythonMinor = 8
	}
}

// FindProjectRoot walks upward from startDir looking for a directory that
// contains a launcher config, a dependency manifest, or the default entry
// point. The first matching ancestor (including startDir itself) wins.
//
// This lets `researchctl launch` be run from anywhere inside the project,
// matching the original launcher's behavior of always operating relative
// to its own location rather than the caller's cwd.
//
// If no marker is found, startDir itself is returned — the preflight
// checks will then report precisely what is missing.
func FindProjectRoot(startDir string) string {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return startDir
	}

	for {
		// Marker files checked in priority order. An explicit launcher
		// config is the strongest signal; manifests and the conventional
		// entry point also identify a project root.
		markers := []string{
			ConfigFileName,
			DefaultManifest,
			"environment.yml",
			DefaultEntryPoint,
		}
		for _, marker := range markers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached the filesystem root without finding a marker.
			abs, _ := filepath.Abs(startDir)
			return abs
		}
		dir = parent
	}
}
