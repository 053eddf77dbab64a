// Package cli — install.go implements the "researchctl install" command.
//
// Install resolves the project's dependency manifest and runs pip
// against it unconditionally, unlike launch which only installs when a
// required module is missing. This is the command for refreshing an
// environment after the manifest changed.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/researchctl/internal/manifest"
	"github.com/mmr-tortoise/researchctl/internal/model"
	"github.com/mmr-tortoise/researchctl/internal/python"
)

// installFlags holds the flag values for the install command.
type installFlags struct {
	project string // --project: project root directory
	upgrade bool   // --upgrade: pass --upgrade to pip
}

// NewInstallCommand creates the "install" cobra command.
func NewInstallCommand() *cobra.Command {
	flags := &installFlags{}

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install the project's dependencies from its manifest",
		Long: `Install dependencies from the project's manifest with pip.

The manifest is found in this order: the file named in researchctl.json,
then requirements.txt, then environment.yml. For conda manifests the
pip section and conda package specs are installed with pip (the conda
solver itself is not used).

Examples:
  researchctl install
  researchctl install --upgrade
  researchctl install --project ~/src/deep-research-agent`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.project, "project", "", "Project root directory (default: found from the current directory)")
	cmd.Flags().BoolVar(&flags.upgrade, "upgrade", false, "Upgrade already-installed packages to the newest allowed versions")

	return cmd
}

// runInstall is the orchestration function for the install command.
func runInstall(cmd *cobra.Command, flags *installFlags) error {
	ctx := cmd.Context()

	// Step 1: Resolve the project and its config.
	projectRoot, cfg, err := resolveProject(flags.project)
	if err != nil {
		return err
	}

	// Step 2: A working interpreter is required to run pip.
	prober := python.NewProber()
	interp, err := prober.Discover(ctx)
	if err != nil {
		return err
	}
	if !interp.AtLeast(cfg.MinPythonMajor, cfg.MinPythonMinor) {
		return model.NewCLIError(
			model.ExitInterpreterNotFound,
			fmt.Sprintf("Python %s at %s is too old — %d.%d or newer is required",
				interp.Version(), interp.Path, cfg.MinPythonMajor, cfg.MinPythonMinor),
		)
	}
	VerboseLog("Interpreter: %s (Python %s)", interp.Path, interp.Version())

	// Step 3: Find and parse the manifest.
	manifestPath, err := manifest.Find(projectRoot, cfg.Manifest)
	if err != nil {
		return err
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}

	fmt.Printf("Installing %d requirements from %s...\n", len(m.Requirements), m.Path)

	// Step 4: Run pip. Its output streams through directly so install
	// progress and compiler errors are visible as they happen.
	if err := manifest.NewInstaller().Install(ctx, interp, m, flags.upgrade); err != nil {
		return err
	}

	// Step 5: Confirm the required modules actually became importable.
	missing, err := prober.MissingModules(ctx, interp, cfg.RequiredModules)
	if err != nil {
		return model.WrapCLIError(model.ExitInterpreterNotFound, "module check failed after install", err)
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"manifest":       m.Path,
			"format":         m.Format,
			"requirements":   len(m.Requirements),
			"missingModules": missing,
		})
		return nil
	}

	if len(missing) > 0 {
		fmt.Printf("\nDone, but modules %v are still not importable — check that %s covers them.\n", missing, m.Path)
	} else {
		fmt.Println("\nDone. All required modules are importable.")
	}
	return nil
}
