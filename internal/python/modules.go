// modules.go implements Python module importability checks.
//
// Before handing off to the API server, the launcher verifies that the
// modules the server imports at startup (fastapi, uvicorn, langchain by
// default) are importable with the discovered interpreter. A missing
// module triggers dependency installation from the manifest instead of
// letting the server crash with an ImportError after the hand-off.
package python

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// defaultImportTimeout bounds the import check. Importing heavyweight
// packages like langchain can take several seconds on a cold cache, so
// this is deliberately more generous than the version probe timeout.
const defaultImportTimeout = 60 * time.Second

// moduleNameRe validates module names before they are interpolated into
// the check script. Import names are dotted identifiers; anything else
// is rejected so arbitrary Python can never be smuggled in through a
// config file.
var moduleNameRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// MissingModules returns the subset of modules that the interpreter
// cannot import, preserving the input order.
//
// All modules are checked in a single interpreter invocation: the check
// script attempts each import independently and prints the names that
// fail, one per line. One invocation instead of one per module keeps the
// preflight fast — interpreter startup dominates the cost.
//
// An empty result means every module imported cleanly and installation
// can be skipped.
func (p *Prober) MissingModules(ctx context.Context, interp *model.Interpreter, modules []string) ([]string, error) {
	if len(modules) == 0 {
		return nil, nil
	}

	for _, m := range modules {
		if !moduleNameRe.MatchString(m) {
			return nil, fmt.Errorf("invalid module name %q in required modules", m)
		}
	}

	script := buildImportScript(modules)

	checkCtx, cancel := context.WithTimeout(ctx, defaultImportTimeout)
	defer cancel()

	out, err := exec.CommandContext(checkCtx, interp.Path, "-c", script).Output()
	if err != nil {
		// The check script always exits 0 and reports failures on
		// stdout; a non-zero exit means the interpreter itself failed.
		return nil, fmt.Errorf("import check failed with %s: %w", interp.Path, err)
	}

	// Collect the reported names into a set, then filter the input
	// slice so the returned order matches the configured order.
	missing := make(map[string]bool)
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			missing[line] = true
		}
	}

	var result []string
	for _, m := range modules {
		if missing[m] {
			result = append(result, m)
		}
	}
	return result, nil
}

// buildImportScript generates the single-invocation import check script.
// importlib.import_module is used instead of a bare import statement so
// dotted module names work and the failing name can be reported exactly
// as configured.
func buildImportScript(modules []string) string {
	var b strings.Builder
	b.WriteString("import importlib\n")
	for _, m := range modules {
		fmt.Fprintf(&b, "try:\n    importlib.import_module(%q)\nexcept ImportError:\n    print(%q)\n", m, m)
	}
	return b.String()
}
