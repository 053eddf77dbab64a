// install.go invokes pip to install dependencies from a manifest.
//
// Installation always goes through "<python> -m pip" rather than a bare
// "pip" executable, so the packages land in the site-packages of the
// interpreter that was actually discovered — on hosts with several
// Pythons, "pip" on PATH frequently belongs to a different one.
package manifest

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// Installer runs dependency installations against a specific interpreter.
//
// It is stateless — all methods receive their inputs as parameters.
// The struct exists as a receiver to support future extensions such as
// a configurable index URL or a pip download cache location.
type Installer struct{}

// NewInstaller creates a new Installer instance.
func NewInstaller() *Installer {
	return &Installer{}
}

// Install installs the manifest's dependencies using the given
// interpreter's pip.
//
// For requirements manifests this runs:
//
//	<python> -m pip install -r <manifest>
//
// For conda manifests the nested pip entries are installed individually
// ("pip install name spec ..."), because pip cannot consume
// environment.yml directly and requiring conda on the host would be a
// much heavier dependency than the launcher wants.
//
// When upgrade is true, --upgrade is passed through to pip.
//
// Output streams to the launcher's stdout/stderr so the user sees pip's
// progress live — dependency installation can take minutes and a silent
// launcher looks hung.
func (in *Installer) Install(ctx context.Context, interp *model.Interpreter, m *Manifest, upgrade bool) error {
	args := []string{"-m", "pip", "install"}
	if upgrade {
		args = append(args, "--upgrade")
	}

	switch m.Format {
	case "requirements":
		args = append(args, "-r", m.Path)
	case "conda":
		if len(m.Requirements) == 0 {
			return nil
		}
		for _, r := range m.Requirements {
			// The conda "python" entry pins the interpreter itself and
			// is not pip-installable.
			if normalizeName(r.Name) == "python" {
				continue
			}
			spec := r.Name
			if len(r.Extras) > 0 {
				spec += "[" + strings.Join(r.Extras, ",") + "]"
			}
			spec += r.Specifier
			args = append(args, spec)
		}
	default:
		return fmt.Errorf("unknown manifest format %q", m.Format)
	}

	cmd := exec.CommandContext(ctx, interp.Path, args...)
	// pip resolves relative paths in the manifest (-e ., -r file)
	// against its working directory, so run it from the manifest's own
	// directory, matching "pip install -r requirements.txt" run by hand
	// from the project root.
	cmd.Dir = filepath.Dir(m.Path)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return model.WrapCLIError(
			model.ExitInstallFailed,
			fmt.Sprintf("dependency installation from %s failed", m.Path),
			err,
		)
	}
	return nil
}
