// Package cli — doctor.go implements the "researchctl doctor" command.
//
// Doctor runs every preflight check that launch runs, but never aborts
// early: all checks execute and the full report is printed, so a user
// with several problems fixes them in one pass instead of discovering
// them one launch attempt at a time.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/researchctl/internal/config"
	"github.com/mmr-tortoise/researchctl/internal/docker"
	"github.com/mmr-tortoise/researchctl/internal/environ"
	"github.com/mmr-tortoise/researchctl/internal/launcher"
	"github.com/mmr-tortoise/researchctl/internal/manifest"
	"github.com/mmr-tortoise/researchctl/internal/model"
	"github.com/mmr-tortoise/researchctl/internal/port"
	"github.com/mmr-tortoise/researchctl/internal/python"
)

// doctorFlags holds the flag values for the doctor command.
type doctorFlags struct {
	project   string // --project: project root directory
	container bool   // --container: also check Docker connectivity
}

// NewDoctorCommand creates the "doctor" cobra command.
func NewDoctorCommand() *cobra.Command {
	flags := &doctorFlags{}

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run every preflight check and report the results",
		Long: `Run the complete preflight check suite without launching anything.

Each check reports pass, warn, or fail. The command exits non-zero
when any check fails, which makes it usable from scripts and CI:

  researchctl doctor && researchctl launch

Examples:
  researchctl doctor
  researchctl doctor --container
  researchctl doctor --project ~/src/deep-research-agent --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.project, "project", "", "Project root directory (default: found from the current directory)")
	cmd.Flags().BoolVar(&flags.container, "container", false, "Also check Docker daemon connectivity")

	return cmd
}

// runDoctor executes the check suite and prints the report. The return
// error carries the exit code of the first failing check.
func runDoctor(ctx context.Context, flags *doctorFlags) error {
	projectRoot, cfg, err := resolveProject(flags.project)
	if err != nil {
		return err
	}

	checks, firstFailure := collectChecks(ctx, projectRoot, cfg, flags.container)

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"projectRoot": projectRoot,
			"status":      model.WorstStatus(checks).String(),
			"checks":      checks,
		})
	} else {
		printDoctorReport(projectRoot, checks)
	}

	return firstFailure
}

// collectChecks runs every check in order and returns the results plus
// the error of the first failing check (nil when nothing failed). Later
// checks still run after a failure so the report is complete.
func collectChecks(ctx context.Context, projectRoot string, cfg *config.Config, checkDocker bool) ([]model.CheckResult, error) {
	var checks []model.CheckResult
	var firstFailure error

	fail := func(check model.CheckResult, err error) {
		checks = append(checks, check)
		if firstFailure == nil {
			firstFailure = err
		}
	}

	// .env: informational only, loaded first so the later env var and
	// settings checks see the project's values.
	loaded, err := environ.LoadDotenv(projectRoot)
	switch {
	case err != nil:
		checks = append(checks, model.CheckResult{
			Name:   "dotenv",
			Status: model.StatusWarn,
			Detail: fmt.Sprintf(".env could not be loaded: %v", err),
		})
	case loaded:
		checks = append(checks, model.CheckResult{
			Name:   "dotenv",
			Status: model.StatusPass,
			Detail: ".env loaded",
		})
	default:
		checks = append(checks, model.CheckResult{
			Name:   "dotenv",
			Status: model.StatusPass,
			Detail: "no .env file (using the process environment)",
		})
	}

	// Interpreter: the one check whose failure maps to exit code 1.
	prober := python.NewProber()
	interp, err := prober.Discover(ctx)
	if err != nil {
		fail(model.CheckResult{
			Name:   "interpreter",
			Status: model.StatusFail,
			Detail: "no Python 3 interpreter found on PATH",
		}, err)
	} else if !interp.AtLeast(cfg.MinPythonMajor, cfg.MinPythonMinor) {
		fail(model.CheckResult{
			Name:   "interpreter",
			Status: model.StatusFail,
			Detail: fmt.Sprintf("Python %s at %s is too old (need %d.%d+)", interp.Version(), interp.Path, cfg.MinPythonMajor, cfg.MinPythonMinor),
		}, model.NewCLIError(model.ExitInterpreterNotFound,
			fmt.Sprintf("Python %d.%d or newer is required", cfg.MinPythonMajor, cfg.MinPythonMinor)))
	} else {
		checks = append(checks, model.CheckResult{
			Name:   "interpreter",
			Status: model.StatusPass,
			Detail: fmt.Sprintf("Python %s at %s", interp.Version(), interp.Path),
		})
	}

	// Modules: only checkable with a working interpreter.
	if interp != nil {
		missing, err := prober.MissingModules(ctx, interp, cfg.RequiredModules)
		switch {
		case err != nil:
			checks = append(checks, model.CheckResult{
				Name:   "modules",
				Status: model.StatusWarn,
				Detail: fmt.Sprintf("module check failed: %v", err),
			})
		case len(missing) > 0:
			checks = append(checks, model.CheckResult{
				Name:   "modules",
				Status: model.StatusWarn,
				Detail: fmt.Sprintf("missing modules %v (researchctl install, or launch installs them)", missing),
			})
		default:
			checks = append(checks, model.CheckResult{
				Name:   "modules",
				Status: model.StatusPass,
				Detail: fmt.Sprintf("all required modules importable: %v", cfg.RequiredModules),
			})
		}
	}

	// Manifest: required for installs, so its absence is a failure when
	// modules are missing — but doctor reports presence regardless.
	manifestPath, err := manifest.Find(projectRoot, cfg.Manifest)
	if err != nil {
		checks = append(checks, model.CheckResult{
			Name:   "manifest",
			Status: model.StatusWarn,
			Detail: "no dependency manifest found (requirements.txt or environment.yml)",
		})
	} else if m, err := manifest.Load(manifestPath); err != nil {
		fail(model.CheckResult{
			Name:   "manifest",
			Status: model.StatusFail,
			Detail: fmt.Sprintf("%s is malformed: %v", manifestPath, err),
		}, err)
	} else {
		checks = append(checks, model.CheckResult{
			Name:   "manifest",
			Status: model.StatusPass,
			Detail: fmt.Sprintf("%s (%d requirements)", m.Path, len(m.Requirements)),
		})
	}

	// Environment variables: warn-only, matching launch behavior.
	checks = append(checks, environ.CheckVars(cfg.RequiredEnv, cfg.OptionalEnv)...)

	// Server settings and port.
	settings, err := environ.ResolveSettings()
	if err != nil {
		fail(model.CheckResult{
			Name:   "settings",
			Status: model.StatusFail,
			Detail: err.Error(),
		}, err)
	} else {
		checks = append(checks, model.CheckResult{
			Name:   "settings",
			Status: model.StatusPass,
			Detail: fmt.Sprintf("server will bind %s (reload: %t)", settings.URL(), settings.Reload),
		})
		checks = append(checks, port.NewScanner().Check(settings.Port))
	}

	// Entry point: validated without launching.
	handoff := &launcher.HandOff{ProjectRoot: projectRoot, EntryPoint: cfg.EntryPoint}
	if err := handoff.Validate(); err != nil {
		fail(model.CheckResult{
			Name:   "entry-point",
			Status: model.StatusFail,
			Detail: fmt.Sprintf("entry point %s not found under %s", cfg.EntryPoint, projectRoot),
		}, err)
	} else {
		checks = append(checks, model.CheckResult{
			Name:   "entry-point",
			Status: model.StatusPass,
			Detail: cfg.EntryPoint,
		})
	}

	// Docker: only when requested, since host-mode launches never touch
	// the daemon.
	if checkDocker {
		cli, err := docker.NewClient()
		if err != nil {
			fail(model.CheckResult{
				Name:   "docker",
				Status: model.StatusFail,
				Detail: fmt.Sprintf("Docker is not available: %v", err),
			}, err)
		} else {
			defer func() { _ = cli.Close() }()
			if err := cli.Ping(ctx); err != nil {
				fail(model.CheckResult{
					Name:   "docker",
					Status: model.StatusFail,
					Detail: fmt.Sprintf("Docker daemon is not responding: %v", err),
				}, err)
			} else {
				checks = append(checks, model.CheckResult{
					Name:   "docker",
					Status: model.StatusPass,
					Detail: "daemon reachable",
				})
			}
		}
	}

	return checks, firstFailure
}

// printDoctorReport writes the human-readable check report.
func printDoctorReport(projectRoot string, checks []model.CheckResult) {
	fmt.Printf("Preflight report for %s\n\n", projectRoot)

	for _, check := range checks {
		fmt.Printf("  %-6s %-12s %s\n", statusGlyph(check.Status), check.Name, check.Detail)
	}

	fmt.Println()
	worst := model.WorstStatus(checks)
	switch worst {
	case model.StatusPass:
		fmt.Println("All checks passed. Ready to launch.")
	case model.StatusWarn:
		fmt.Println("Checks passed with warnings. Launch will proceed.")
	default:
		fmt.Println("Some checks failed. Fix the failures above before launching.")
	}
}

// statusGlyph maps a check status to its report marker.
func statusGlyph(status model.CheckStatus) string {
	switch status {
	case model.StatusPass:
		return "[ok]"
	case model.StatusWarn:
		return "[warn]"
	default:
		return "[fail]"
	}
}
