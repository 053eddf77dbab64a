// Package cli — env.go implements the "researchctl env" command.
//
// Env shows the launcher's resolved view of the project: where the
// project root is, what the config file contributes, what the server
// settings resolve to, and which environment variables are set. It is a
// read-only command for answering "what would launch actually do here".
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/researchctl/internal/environ"
	"github.com/mmr-tortoise/researchctl/internal/model"
)

// envFlags holds the flag values for the env command.
type envFlags struct {
	project string // --project: project root directory
}

// NewEnvCommand creates the "env" cobra command.
func NewEnvCommand() *cobra.Command {
	flags := &envFlags{}

	cmd := &cobra.Command{
		Use:   "env",
		Short: "Show the resolved project configuration and environment",
		Long: `Show the configuration and environment a launch would run with.

Values of API key variables are never printed — only whether each one
is set.

Examples:
  researchctl env
  researchctl env --json
  researchctl env --project ~/src/deep-research-agent`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runEnv(flags)
		},
	}

	cmd.Flags().StringVar(&flags.project, "project", "", "Project root directory (default: found from the current directory)")

	return cmd
}

// runEnv resolves and prints the launch configuration.
func runEnv(flags *envFlags) error {
	projectRoot, cfg, err := resolveProject(flags.project)
	if err != nil {
		return err
	}

	// .env values participate in the resolved view, same as in launch.
	dotenvLoaded, err := environ.LoadDotenv(projectRoot)
	if err != nil {
		return model.WrapCLIError(model.ExitConfigError, "failed to load .env", err)
	}

	settings, err := environ.ResolveSettings()
	if err != nil {
		return err
	}

	// Presence only, never values.
	varStatus := map[string]bool{}
	for _, name := range cfg.RequiredEnv {
		_, set := os.LookupEnv(name)
		varStatus[name] = set
	}
	for _, name := range cfg.OptionalEnv {
		_, set := os.LookupEnv(name)
		varStatus[name] = set
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"projectRoot":     projectRoot,
			"project":         cfg.Name,
			"entryPoint":      cfg.EntryPoint,
			"manifest":        cfg.Manifest,
			"requiredModules": cfg.RequiredModules,
			"minPython":       fmt.Sprintf("%d.%d", cfg.MinPythonMajor, cfg.MinPythonMinor),
			"image":           cfg.Image,
			"dotenvLoaded":    dotenvLoaded,
			"host":            settings.Host,
			"port":            settings.Port,
			"reload":          settings.Reload,
			"url":             settings.URL(),
			"environment":     varStatus,
		})
		return nil
	}

	fmt.Printf("Project\n")
	fmt.Printf("  Root:        %s\n", projectRoot)
	fmt.Printf("  Name:        %s\n", cfg.Name)
	fmt.Printf("  Entry point: %s\n", cfg.EntryPoint)
	fmt.Printf("  Manifest:    %s\n", cfg.Manifest)
	fmt.Printf("  Min Python:  %d.%d\n", cfg.MinPythonMajor, cfg.MinPythonMinor)
	fmt.Printf("  Image:       %s\n", cfg.Image)
	fmt.Println()

	fmt.Printf("Server\n")
	fmt.Printf("  Address: %s\n", settings.URL())
	fmt.Printf("  Reload:  %t\n", settings.Reload)
	fmt.Println()

	fmt.Printf("Environment\n")
	if dotenvLoaded {
		fmt.Printf("  .env: loaded\n")
	} else {
		fmt.Printf("  .env: none\n")
	}
	for _, name := range cfg.RequiredEnv {
		fmt.Printf("  %s: %s (required)\n", name, setOrUnset(varStatus[name]))
	}
	for _, name := range cfg.OptionalEnv {
		fmt.Printf("  %s: %s (optional)\n", name, setOrUnset(varStatus[name]))
	}
	return nil
}

// setOrUnset renders variable presence without exposing the value.
func setOrUnset(set bool) string {
	if set {
		return "set"
	}
	return "unset"
}
