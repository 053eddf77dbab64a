// Package cli — launch.go implements the "researchctl launch" command.
//
// The launch command is the primary user-facing operation. It runs the
// full preflight sequence and then hands control to the API server's
// entry point.
//
// Orchestration steps:
//  1. Resolve the project root and load the launcher config
//  2. Load the project's .env file
//  3. Discover a Python 3 interpreter (missing → exit 1)
//  4. Verify required modules; install from the manifest if missing
//  5. Check API key environment variables (warn, never fail)
//  6. Resolve server settings (env + flags) and check the port
//  7. Hand off: exec on the host, or docker run in container mode
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

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

// launchFlags holds the flag values for the launch command.
// These are bound to cobra flags in NewLaunchCommand.
type launchFlags struct {
	project   string // --project: project root directory
	entry     string // --entry: entry point override
	host      string // --host: bind address override
	portNum   int    // --port: port override
	reload    bool   // --reload: enable server auto-reload
	container bool   // --container: run in Docker instead of on the host
	image     string // --image: container image override
	noInstall bool   // --no-install: skip dependency installation
}

// NewLaunchCommand creates the "launch" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewLaunchCommand() *cobra.Command {
	flags := &launchFlags{}

	cmd := &cobra.Command{
		Use:   "launch [-- args...]",
		Short: "Preflight the environment and start the API server",
		Long: `Run the full preflight sequence and hand control to the API server.

The command automatically:
  - Discovers a Python 3 interpreter on PATH (exit 1 if none)
  - Verifies the server's required libraries are importable
  - Installs missing dependencies from the project manifest
  - Warns if OPENAI_API_KEY is unset (launch still proceeds)
  - Changes to the project root and executes the entry point

Arguments after "--" are passed through to the entry point.

Examples:
  researchctl launch
  researchctl launch --port 9000 --reload
  researchctl launch --container
  researchctl launch --project ~/src/deep-research-agent --no-install`,

		// ArbitraryArgs lets everything after "--" flow to the entry point.
		Args: cobra.ArbitraryArgs,

		// RunE is used instead of Run so we can return errors. Cobra
		// passes them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.project, "project", "", "Project root directory (default: found from the current directory)")
	cmd.Flags().StringVar(&flags.entry, "entry", "", "Entry point script relative to the project root")
	cmd.Flags().StringVar(&flags.host, "host", "", "Server bind address (overrides API_HOST)")
	cmd.Flags().IntVar(&flags.portNum, "port", 0, "Server port (overrides API_PORT)")
	cmd.Flags().BoolVar(&flags.reload, "reload", false, "Enable server auto-reload (overrides API_RELOAD)")
	cmd.Flags().BoolVar(&flags.container, "container", false, "Run the server in a Docker container")
	cmd.Flags().StringVar(&flags.image, "image", "", "Container image for --container mode")
	cmd.Flags().BoolVar(&flags.noInstall, "no-install", false, "Never install dependencies, even if modules are missing")

	return cmd
}

// runLaunch is the main orchestration function for the launch command.
func runLaunch(cmd *cobra.Command, args []string, flags *launchFlags) error {
	ctx := cmd.Context()

	// Step 1: Resolve the project root and load the launcher config.
	projectRoot, cfg, err := resolveProject(flags.project)
	if err != nil {
		return err
	}
	VerboseLog("Project root: %s", projectRoot)

	entryPoint := cfg.EntryPoint
	if flags.entry != "" {
		entryPoint = flags.entry
	}

	// Step 2: Load the project's .env file, if any. Already-set process
	// variables win over .env values.
	loaded, err := environ.LoadDotenv(projectRoot)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to load .env", err)
	}
	if loaded {
		VerboseLog("Loaded .env from %s", projectRoot)
	}

	// Step 3: Discover a Python 3 interpreter. A miss here is the one
	// fatal preflight condition: exit code 1 with an error message.
	prober := python.NewProber()
	interp, err := prober.Discover(ctx)
	if err != nil {
		return err // Discover already returns CLIError with exit code 1
	}
	VerboseLog("Interpreter: %s (Python %s)", interp.Path, interp.Version())

	if !interp.AtLeast(cfg.MinPythonMajor, cfg.MinPythonMinor) {
		return model.NewCLIError(
			model.ExitInterpreterNotFound,
			fmt.Sprintf("Python %s at %s is too old — %d.%d or newer is required",
				interp.Version(), interp.Path, cfg.MinPythonMajor, cfg.MinPythonMinor),
		)
	}

	// Step 4: Verify required modules and install from the manifest if
	// any are missing (host mode only — in container mode the image's
	// own environment is authoritative and pip runs at image level).
	if !flags.container {
		if err := ensureModules(ctx, prober, interp, projectRoot, cfg, flags.noInstall); err != nil {
			return err
		}
	}

	// Step 5: Check API key environment variables. Missing required
	// variables warn but never stop the launch.
	for _, check := range environ.CheckVars(cfg.RequiredEnv, cfg.OptionalEnv) {
		if check.Status == model.StatusWarn {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", check.Detail)
		}
	}

	// Step 6: Resolve server settings from the environment, apply flag
	// overrides, and check the port.
	settings, err := resolveSettingsWithFlags(cmd, flags)
	if err != nil {
		return err
	}
	VerboseLog("Server settings: %s (reload: %t)", settings.URL(), settings.Reload)

	if check := port.NewScanner().Check(settings.Port); check.Status == model.StatusWarn {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", check.Detail)
	}

	// Step 7: Hand off.
	mode := model.ModeHost
	if flags.container {
		mode = model.ModeContainer
	}
	VerboseLog("Launch mode: %s", mode)

	if mode == model.ModeContainer {
		image := cfg.Image
		if flags.image != "" {
			image = flags.image
		}
		return launchContainer(ctx, projectRoot, cfg, entryPoint, image, settings)
	}

	fmt.Printf("Starting Deep Research Agent API...\n")
	fmt.Printf("  Address: %s\n", settings.URL())
	fmt.Printf("  Docs:    %s/docs\n", settings.URL())
	fmt.Printf("  Reload:  %t\n", settings.Reload)

	handoff := &launcher.HandOff{
		Interpreter: interp,
		ProjectRoot: projectRoot,
		EntryPoint:  entryPoint,
		Args:        args,
	}
	// On success this call does not return: the launcher's process image
	// is replaced by the interpreter running the entry point.
	return handoff.Run()
}

// resolveProject determines the project root (explicit flag or upward
// search from the cwd) and loads its launcher config.
func resolveProject(projectFlag string) (string, *config.Config, error) {
	var projectRoot string
	if projectFlag != "" {
		projectRoot = projectFlag
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			return "", nil, model.WrapCLIError(model.ExitConfigError, "failed to get current directory", err)
		}
		projectRoot = config.FindProjectRoot(cwd)
	}

	cfg, err := config.LoadOrDefault(projectRoot)
	if err != nil {
		return "", nil, err // Load already returns CLIError with ExitConfigError
	}
	return projectRoot, cfg, nil
}

// ensureModules checks the required modules and installs from the
// manifest when some are missing. After an install the check is rerun:
// a module still missing then means the manifest does not provide it,
// which is surfaced as a warning rather than an error — the server's
// own ImportError will say precisely what is wrong.
func ensureModules(ctx context.Context, prober *python.Prober, interp *model.Interpreter, projectRoot string, cfg *config.Config, noInstall bool) error {
	missing, err := prober.MissingModules(ctx, interp, cfg.RequiredModules)
	if err != nil {
		return model.WrapCLIError(model.ExitInterpreterNotFound, "module check failed", err)
	}
	if len(missing) == 0 {
		VerboseLog("All required modules present: %v", cfg.RequiredModules)
		return nil
	}

	if noInstall {
		fmt.Fprintf(os.Stderr, "Warning: missing modules %v (--no-install given, skipping installation)\n", missing)
		return nil
	}

	fmt.Printf("Missing modules %v — installing dependencies...\n", missing)

	manifestPath, err := manifest.Find(projectRoot, cfg.Manifest)
	if err != nil {
		return err // Find already returns CLIError with ExitManifestNotFound
	}
	m, err := manifest.Load(manifestPath)
	if err != nil {
		return err
	}
	VerboseLog("Installing from %s (%d requirements)", m.Path, len(m.Requirements))

	if err := manifest.NewInstaller().Install(ctx, interp, m, false); err != nil {
		return err // Install already returns CLIError with ExitInstallFailed
	}

	// Re-check after the install so the user learns now, not at server
	// startup, if the manifest does not actually cover a module.
	still, err := prober.MissingModules(ctx, interp, missing)
	if err != nil {
		return model.WrapCLIError(model.ExitInterpreterNotFound, "module re-check failed", err)
	}
	if len(still) > 0 {
		fmt.Fprintf(os.Stderr, "Warning: modules %v are still missing after installation from %s\n", still, manifestPath)
	}
	return nil
}

// resolveSettingsWithFlags resolves server settings from the environment
// and applies flag overrides. Precedence: flag > environment > default.
//
// Overrides are written back into the process environment so the entry
// point (which reads API_HOST/API_PORT/API_RELOAD itself) sees the same
// values the launcher validated and printed.
func resolveSettingsWithFlags(cmd *cobra.Command, flags *launchFlags) (*model.ServerSettings, error) {
	// Write flag overrides into the environment first, then let the
	// normal resolution (with validation) pick them up.
	if cmd.Flags().Changed("host") {
		if err := os.Setenv(environ.EnvHost, flags.host); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "failed to set API_HOST", err)
		}
	}
	if cmd.Flags().Changed("port") {
		if err := os.Setenv(environ.EnvPort, strconv.Itoa(flags.portNum)); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "failed to set API_PORT", err)
		}
	}
	if cmd.Flags().Changed("reload") {
		if err := os.Setenv(environ.EnvReload, strconv.FormatBool(flags.reload)); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError, "failed to set API_RELOAD", err)
		}
	}

	return environ.ResolveSettings()
}

// launchContainer starts the API server in a Docker container and
// prints the launch summary. Unlike host mode, the launcher returns
// after the container is started — the server runs detached.
func launchContainer(ctx context.Context, projectRoot string, cfg *config.Config, entryPoint, image string, settings *model.ServerSettings) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns CLIError with ExitDockerNotRunning
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}
	VerboseLog("Connected to Docker daemon")

	labels := docker.BuildLabels(&docker.Launch{
		Project:    cfg.Name,
		EntryPoint: entryPoint,
		Port:       settings.Port,
		CreatedAt:  time.Now().UTC(),
	})

	spec := &docker.RunSpec{
		Name:        docker.ContainerName(cfg.Name),
		Image:       image,
		ProjectRoot: projectRoot,
		EntryPoint:  entryPoint,
		Port:        settings.Port,
		Env:         environ.PassthroughVars(cfg.RequiredEnv, cfg.OptionalEnv),
		Labels:      labels,
	}

	VerboseLog("Starting container %s from image %s", spec.Name, spec.Image)
	containerID, err := docker.Run(ctx, spec)
	if err != nil {
		return err
	}

	printContainerLaunch(spec, containerID, settings)
	return nil
}

// printContainerLaunch outputs the container launch summary in text or
// JSON format based on the --json flag.
func printContainerLaunch(spec *docker.RunSpec, containerID string, settings *model.ServerSettings) {
	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"containerId":   containerID,
			"containerName": spec.Name,
			"image":         spec.Image,
			"entryPoint":    spec.EntryPoint,
			"url":           settings.URL(),
		})
		return
	}

	fmt.Printf("Started Deep Research Agent API in container %q\n", spec.Name)
	fmt.Printf("  Image:   %s\n", spec.Image)
	fmt.Printf("  Address: %s\n", settings.URL())
	fmt.Printf("  Docs:    %s/docs\n", settings.URL())
	fmt.Println()
	fmt.Printf("Use \"researchctl ps\" to inspect and \"researchctl stop %s\" to stop it.\n", spec.Name)
}
