package python

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// defaultProbeTimeout bounds each interpreter invocation during
// discovery. Starting a Python interpreter is normally well under a
// second; 10 seconds covers cold network filesystems and slow
// antivirus-scanned hosts without letting a hung interpreter block the
// launcher forever.
const defaultProbeTimeout = 10 * time.Second

// versionScript asks the interpreter for its own version as three
// space-separated integers. sys.version_info is used instead of parsing
// `python --version` output, because the human-readable banner format
// has changed across Python releases and distributions.
const versionScript = "import sys; print('%d %d %d' % sys.version_info[:3])"

// versionRe matches the three-integer output of versionScript.
var versionRe = regexp.MustCompile(`^(\d+)\s+(\d+)\s+(\d+)$`)

// Prober locates Python interpreters and inspects their capabilities.
//
// It is currently stateless — all methods receive their inputs as
// parameters. The struct exists as a receiver to support future
// extensions such as a configurable probe timeout.
type Prober struct{}

// NewProber creates a new Prober instance.
// Currently no configuration is needed, but this constructor follows Go
// convention and allows future expansion.
func NewProber() *Prober {
	return &Prober{}
}

// Candidates returns the command names probed during discovery, in
// priority order. "python3" is preferred because on many distributions
// plain "python" is either absent or still points at Python 2.
func (p *Prober) Candidates() []string {
	return []string{"python3", "python"}
}

// Discover finds a usable Python interpreter on PATH.
//
// The candidates are checked in order; for each one found on PATH the
// version is probed, and the first candidate that reports major version 3
// wins. A Python 2 interpreter under the "python" name is skipped rather
// than reported as an error, so a host with both python→2.7 and
// python3→3.x resolves correctly.
//
// Returns a model.CLIError with ExitInterpreterNotFound (exit status 1)
// if no Python 3 interpreter is discoverable. This exit code is part of
// the launcher's external contract.
func (p *Prober) Discover(ctx context.Context) (*model.Interpreter, error) {
	var probeErrs []string

	for _, candidate := range p.Candidates() {
		// exec.LookPath resolves the command against PATH without
		// running it. A miss here is the common case on hosts where
		// only one of the two names exists.
		path, err := exec.LookPath(candidate)
		if err != nil {
			continue
		}

		interp, err := p.probeVersion(ctx, candidate, path)
		if err != nil {
			// Record the failure but keep trying the remaining
			// candidates — a broken shim for "python3" should not hide
			// a working "python".
			probeErrs = append(probeErrs, fmt.Sprintf("%s: %v", path, err))
			continue
		}

		if interp.Major != 3 {
			probeErrs = append(probeErrs, fmt.Sprintf("%s: Python %s is not Python 3", path, interp.Version()))
			continue
		}

		return interp, nil
	}

	detail := "no python3 or python executable on PATH"
	if len(probeErrs) > 0 {
		detail = strings.Join(probeErrs, "; ")
	}
	return nil, model.NewCLIError(
		model.ExitInterpreterNotFound,
		fmt.Sprintf("Python 3 interpreter not found (%s) — install Python 3.8 or newer", detail),
	)
}

// probeVersion runs the interpreter with versionScript and parses the
// reported version into an Interpreter value.
func (p *Prober) probeVersion(ctx context.Context, command, path string) (*model.Interpreter, error) {
	// A child context bounds the probe so a wedged interpreter (e.g.,
	// stuck on a dead NFS mount) cannot hang the launcher.
	probeCtx, cancel := context.WithTimeout(ctx, defaultProbeTimeout)
	defer cancel()

	out, err := exec.CommandContext(probeCtx, path, "-c", versionScript).Output()
	if err != nil {
		return nil, fmt.Errorf("version probe failed: %w", err)
	}

	m := versionRe.FindStringSubmatch(strings.TrimSpace(string(out)))
	if m == nil {
		return nil, fmt.Errorf("unexpected version probe output %q", strings.TrimSpace(string(out)))
	}

	// The regexp guarantees the submatches are digit runs, so Atoi
	// cannot fail here.
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])

	return &model.Interpreter{
		Path:    path,
		Command: command,
		Major:   major,
		Minor:   minor,
		Patch:   patch,
	}, nil
}
