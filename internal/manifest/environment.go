// environment.go parses conda environment.yml files into the same
// Manifest model as pip requirements files.
//
// Conda environment files have the shape:
//
//	name: deep-research-agent
//	channels:
//	  - conda-forge
//	dependencies:
//	  - python=3.11
//	  - numpy
//	  - pip:
//	      - fastapi>=0.104.0
//
// Conda package entries use single "=" for version pinning, while the
// nested pip: list uses pip specifier syntax. Both are normalized into
// Requirement values so the module-presence checks work regardless of
// which manifest format a project ships.
package manifest

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// condaEnvironment mirrors the subset of the environment.yml schema the
// launcher cares about. Dependencies is []interface{} because entries are
// either plain strings or a nested map for the pip: section.
type condaEnvironment struct {
	// Name is the conda environment name.
	Name string `yaml:"name"`

	// Channels lists the conda channels, kept only for doctor output.
	Channels []string `yaml:"channels"`

	// Dependencies holds conda package strings and the optional
	// pip: sub-list.
	Dependencies []interface{} `yaml:"dependencies"`
}

// ParseEnvironment reads and parses a conda environment.yml file.
//
// Returns a CLIError with ExitManifestNotFound if the file does not
// exist, mirroring ParseRequirements.
func ParseEnvironment(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitManifestNotFound,
				fmt.Sprintf("dependency manifest not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var env condaEnvironment
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	m := &Manifest{Path: path, Format: "conda"}

	for _, dep := range env.Dependencies {
		switch v := dep.(type) {
		case string:
			req, err := parseCondaSpec(v)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			m.Requirements = append(m.Requirements, *req)

		case map[string]interface{}:
			// The pip: sub-list. Its entries use pip requirement syntax,
			// so the requirements-line parser applies.
			pipDeps, ok := v["pip"].([]interface{})
			if !ok {
				continue
			}
			for _, pd := range pipDeps {
				s, ok := pd.(string)
				if !ok {
					continue
				}
				req, err := parseRequirementLine(s)
				if err != nil {
					return nil, fmt.Errorf("%s: pip entry: %w", path, err)
				}
				m.Requirements = append(m.Requirements, *req)
			}
		}
	}

	return m, nil
}

// parseCondaSpec parses a conda package string. Conda uses
// "name=version" or "name=version=build" with single equals signs, but
// also accepts pip-style ">=" constraints, so the pip operators are
// checked first.
func parseCondaSpec(s string) (*Requirement, error) {
	// Pip-style operators take priority: "pip>=23.0" must not be split
	// at the "=" of ">=".
	for _, op := range specifierOperators {
		if len(op) > 1 && strings.Contains(s, op) {
			return parseRequirementLine(s)
		}
	}

	// Conda's single-equals pinning: "python=3.11" or "numpy=1.26=py311".
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		name := s[:idx]
		if name == "" {
			return nil, fmt.Errorf("conda dependency %q has no package name", s)
		}
		// Strip the build string if present: "1.26=py311" → "1.26".
		version := s[idx+1:]
		if bi := strings.IndexByte(version, '='); bi >= 0 {
			version = version[:bi]
		}
		return &Requirement{Name: name, Specifier: "==" + version}, nil
	}

	if s == "" {
		return nil, fmt.Errorf("empty conda dependency entry")
	}
	return &Requirement{Name: s}, nil
}
