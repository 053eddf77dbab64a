// Package cli — stop.go implements the "researchctl stop" command.
//
// Stop halts a running API server container by name or ID prefix, and
// optionally removes it. Only containers carrying this tool's labels
// can be targeted; arbitrary containers are refused.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/researchctl/internal/docker"
	"github.com/mmr-tortoise/researchctl/internal/model"
)

// stopFlags holds the flag values for the stop command.
type stopFlags struct {
	remove bool // --remove: also remove the container after stopping
}

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	flags := &stopFlags{}

	cmd := &cobra.Command{
		Use:   "stop <name-or-id>",
		Short: "Stop an API server container",
		Long: `Stop a container started with "researchctl launch --container".

The argument is either the container name shown by "researchctl ps" or
a container ID prefix. With --remove the container is deleted after
stopping, so the name becomes available for the next launch.

Examples:
  researchctl stop researchctl-deep-research-agent
  researchctl stop 4f9a --remove`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.remove, "remove", false, "Remove the container after stopping it")

	return cmd
}

// runStop stops (and optionally removes) the named container.
func runStop(cmd *cobra.Command, nameOrID string, flags *stopFlags) error {
	ctx := cmd.Context()

	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return err
	}

	// Restricting lookup to managed containers means a typo can never
	// stop something this tool did not start.
	info, err := docker.FindLaunch(ctx, cli, nameOrID)
	if err != nil {
		return err
	}
	if info == nil {
		return model.NewCLIError(
			model.ExitLaunchFailed,
			fmt.Sprintf("no API server container matches %q (see \"researchctl ps\")", nameOrID),
		)
	}

	VerboseLog("Stopping container %s (%s)", info.ContainerName, info.ContainerID)
	if err := docker.StopContainer(ctx, cli, info.ContainerID); err != nil {
		return err
	}

	if flags.remove {
		VerboseLog("Removing container %s", info.ContainerName)
		if err := docker.RemoveContainer(ctx, cli, info.ContainerID, false); err != nil {
			return err
		}
	}

	if IsJSONOutput() {
		printJSON(map[string]interface{}{
			"containerId":   info.ContainerID,
			"containerName": info.ContainerName,
			"stopped":       true,
			"removed":       flags.remove,
		})
		return nil
	}

	if flags.remove {
		fmt.Printf("Stopped and removed %q.\n", info.ContainerName)
	} else {
		fmt.Printf("Stopped %q.\n", info.ContainerName)
	}
	return nil
}
