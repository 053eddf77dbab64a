package manifest

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// Requirement is one normalized dependency entry from a manifest.
// It covers the subset of the pip requirement syntax the launcher needs
// for reporting: the distribution name, extras, a version constraint,
// and an optional environment marker. pip itself does the real
// resolution at install time — the launcher never second-guesses it.
type Requirement struct {
	// Name is the distribution name, e.g. "fastapi".
	Name string `json:"name"`

	// Extras lists requested extras, e.g. ["lxml"] for
	// "duckduckgo-search[lxml]".
	Extras []string `json:"extras,omitempty"`

	// Specifier is the raw version constraint, e.g. ">=0.104.0" or
	// "==2.5.3". Empty when the requirement is unpinned.
	Specifier string `json:"specifier,omitempty"`

	// Marker is the raw environment marker after ";", e.g.
	// `python_version >= "3.8"`. Empty when absent.
	Marker string `json:"marker,omitempty"`
}

// String reassembles the requirement in pip syntax for display.
func (r Requirement) String() string {
	s := r.Name
	if len(r.Extras) > 0 {
		s += "[" + strings.Join(r.Extras, ",") + "]"
	}
	s += r.Specifier
	if r.Marker != "" {
		s += " ; " + r.Marker
	}
	return s
}

// Manifest is a parsed dependency manifest, either a pip requirements
// file or a conda environment file normalized into the same shape.
type Manifest struct {
	// Path is the absolute path the manifest was loaded from.
	Path string `json:"path"`

	// Format is "requirements" or "conda".
	Format string `json:"format"`

	// Requirements lists the normalized dependency entries in file order.
	Requirements []Requirement `json:"requirements"`

	// Referenced lists paths named by -r/--requirement and -c/--constraint
	// option lines, relative to the manifest's directory. These are not
	// followed recursively — pip does that itself at install time — but
	// they are surfaced in doctor output.
	Referenced []string `json:"referenced,omitempty"`

	// Editables lists -e/--editable entries (local or VCS installs).
	Editables []string `json:"editables,omitempty"`
}

// Has reports whether the manifest names the given distribution.
// Comparison follows PEP 503 name normalization: case-insensitive with
// runs of "-", "_" and "." treated as equal.
func (m *Manifest) Has(name string) bool {
	want := normalizeName(name)
	for _, r := range m.Requirements {
		if normalizeName(r.Name) == want {
			return true
		}
	}
	return false
}

// normalizeName applies PEP 503 normalization to a distribution name.
func normalizeName(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	prevSep := false
	for _, r := range lower {
		if r == '-' || r == '_' || r == '.' {
			if !prevSep {
				b.WriteRune('-')
			}
			prevSep = true
			continue
		}
		prevSep = false
		b.WriteRune(r)
	}
	return b.String()
}

// specifierOperators are the version comparison operators recognized at
// the boundary between a name and its constraint, longest first so that
// "==" is not split as "=" + "=".
var specifierOperators = []string{"===", "==", "~=", "!=", ">=", "<=", ">", "<"}

// ParseRequirements reads and parses a pip requirements file.
//
// Handled line forms:
//   - blank lines and "#" comments (including trailing comments)
//   - "-r file" / "--requirement file" and "-c file" / "--constraint file"
//   - "-e path" / "--editable path"
//   - other option lines ("--index-url", "--no-binary", ...), skipped
//   - "name[extras]specifier ; marker" requirement lines
//
// A line that looks like a requirement but has no distribution name
// (e.g. a bare "==1.0") is a parse error: a manifest the launcher cannot
// read is worth stopping for, because pip will reject it too.
func ParseRequirements(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitManifestNotFound,
				fmt.Sprintf("dependency manifest not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	m := &Manifest{Path: path, Format: "requirements"}

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Strip trailing comments. A "#" only starts a comment at the
		// start of the line or after whitespace, per pip's own rules —
		// URLs with fragments (#egg=...) must survive.
		if idx := commentIndex(line); idx >= 0 {
			line = strings.TrimSpace(line[:idx])
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "-") {
			if err := parseOptionLine(m, line); err != nil {
				return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
			}
			continue
		}

		req, err := parseRequirementLine(line)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		m.Requirements = append(m.Requirements, *req)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return m, nil
}

// commentIndex returns the index where a trailing comment starts, or -1.
func commentIndex(line string) int {
	for i, r := range line {
		if r != '#' {
			continue
		}
		if i == 0 {
			return 0
		}
		prev := line[i-1]
		if prev == ' ' || prev == '\t' {
			return i
		}
	}
	return -1
}

// parseOptionLine handles "-" prefixed lines. Referenced files and
// editable installs are recorded; all other options are pip's business
// and are skipped.
func parseOptionLine(m *Manifest, line string) error {
	fields := strings.Fields(line)
	opt := fields[0]

	arg := ""
	switch {
	case len(fields) >= 2:
		arg = fields[1]
	case strings.Contains(opt, "="):
		// "--requirement=file" form.
		parts := strings.SplitN(opt, "=", 2)
		opt, arg = parts[0], parts[1]
	}

	switch opt {
	case "-r", "--requirement", "-c", "--constraint":
		if arg == "" {
			return fmt.Errorf("option %q requires a file argument", opt)
		}
		m.Referenced = append(m.Referenced, arg)
	case "-e", "--editable":
		if arg == "" {
			return fmt.Errorf("option %q requires a path argument", opt)
		}
		m.Editables = append(m.Editables, arg)
	}
	// Unknown options are deliberately not an error — requirements files
	// carry many pip options the launcher has no use for.
	return nil
}

// parseRequirementLine parses a single "name[extras]specifier ; marker"
// requirement line into a Requirement.
func parseRequirementLine(line string) (*Requirement, error) {
	req := &Requirement{}

	// Split off the environment marker first. The marker separator is
	// ";" — version specifiers never contain one.
	if idx := strings.Index(line, ";"); idx >= 0 {
		req.Marker = strings.TrimSpace(line[idx+1:])
		line = strings.TrimSpace(line[:idx])
	}

	// Split off the version specifier at the first operator occurrence.
	for i := 0; i < len(line); i++ {
		matched := false
		for _, op := range specifierOperators {
			if strings.HasPrefix(line[i:], op) {
				req.Specifier = strings.TrimSpace(line[i:])
				line = strings.TrimSpace(line[:i])
				matched = true
				break
			}
		}
		if matched {
			break
		}
	}

	// Split off extras: "name[extra1,extra2]".
	if idx := strings.Index(line, "["); idx >= 0 {
		end := strings.Index(line, "]")
		if end < idx {
			return nil, fmt.Errorf("malformed extras in requirement %q", line)
		}
		for _, e := range strings.Split(line[idx+1:end], ",") {
			e = strings.TrimSpace(e)
			if e != "" {
				req.Extras = append(req.Extras, e)
			}
		}
		line = strings.TrimSpace(line[:idx])
	}

	if line == "" {
		return nil, fmt.Errorf("requirement line has no distribution name")
	}
	req.Name = line
	return req, nil
}

// Find locates a dependency manifest in the project root.
//
// The search order prefers the configured manifest name, then falls back
// to the conventional alternatives:
//  1. <projectRoot>/<configured> (usually requirements.txt)
//  2. <projectRoot>/requirements.txt
//  3. <projectRoot>/environment.yml
//  4. <projectRoot>/environment.yaml
//
// Returns the absolute path to the first found file, or a CLIError with
// ExitManifestNotFound if none exists.
func Find(projectRoot, configured string) (string, error) {
	candidates := []string{configured, "requirements.txt", "environment.yml", "environment.yaml"}

	seen := make(map[string]bool)
	for _, name := range candidates {
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		path := filepath.Join(projectRoot, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", model.NewCLIError(
		model.ExitManifestNotFound,
		fmt.Sprintf("no dependency manifest found in %s (searched %s, requirements.txt, environment.yml)", projectRoot, configured),
	)
}

// Load parses the manifest at path, dispatching on the file extension:
// .yml/.yaml files are treated as conda environment files, everything
// else as pip requirements files.
func Load(path string) (*Manifest, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return ParseEnvironment(path)
	default:
		return ParseRequirements(path)
	}
}
