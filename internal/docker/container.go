// container.go implements Docker container lifecycle operations for
// container-mode launches: starting the API server container, and
// listing/stopping/removing containers previously launched.
//
// All managed containers are identified by the "researchctl.managed-by"
// label, which enables filtering them from unrelated containers on the
// same host.
package docker

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// RunSpec describes the container to launch for the API server.
type RunSpec struct {
	// Name is the container name (derived from the project name).
	Name string

	// Image is the container image, e.g. "python:3.11-slim".
	Image string

	// ProjectRoot is the host path bind-mounted into the container.
	ProjectRoot string

	// EntryPoint is the script run inside the container, relative to
	// the project root.
	EntryPoint string

	// Port is the API port, published host:container 1:1.
	Port int

	// Env holds KEY=value pairs forwarded into the container.
	Env []string

	// Labels are applied to the container for later discovery.
	Labels map[string]string
}

// workdir is the mount point for the project inside the container.
const workdir = "/app"

// Run starts the API server container with "docker run -d".
//
// The function uses os/exec rather than the Docker SDK for container
// creation, because the SDK's ContainerCreate + ContainerStart workflow
// requires constructing complex Config/HostConfig structs, while
// "docker run" accepts the same flags users already know. Listing and
// stopping, which have simple SDK calls, go through the SDK.
//
// The container runs the same hand-off the host mode performs:
// python <entryPoint> from the project root, which is bind-mounted at
// /app so code edits on the host are visible to a reloading server.
//
// Returns the container ID on success.
func Run(ctx context.Context, spec *RunSpec) (string, error) {
	args := []string{"run", "-d", "--name", spec.Name, "--workdir", workdir}

	// Bind-mount the project root read-write: a reloading server and
	// pip-installed editable packages both write into it.
	args = append(args, "-v", spec.ProjectRoot+":"+workdir)

	// Publish the API port 1:1 so the URLs printed by the launcher are
	// valid on the host.
	args = append(args, "-p", fmt.Sprintf("%d:%d", spec.Port, spec.Port))

	for _, e := range spec.Env {
		args = append(args, "-e", e)
	}

	// Deterministic label order keeps the command reproducible in
	// verbose output.
	keys := make([]string, 0, len(spec.Labels))
	for k := range spec.Labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "--label", k+"="+spec.Labels[k])
	}

	args = append(args, spec.Image, "python", spec.EntryPoint)

	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker run failed for container %q: %s", spec.Name, strings.TrimSpace(string(output))),
			err,
		)
	}

	// docker run -d prints the new container's ID on stdout.
	return strings.TrimSpace(string(output)), nil
}

// ListLaunches queries the Docker daemon for all containers with the
// "researchctl.managed-by=researchctl" label, including stopped ones.
// Stopped containers are still shown by ps so they can be removed.
//
// This is the primary entry point for discovering what container-mode
// launches currently exist; all state is derived from Docker labels.
func ListLaunches(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	// Filtering happens server-side: the daemon only returns containers
	// carrying the management label.
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		info := containerToInfo(c)
		// Containers that match the filter but fail metadata parsing are
		// skipped rather than failing the whole listing; one corrupted
		// container should not hide the others.
		if err := ParseInfo(&info); err != nil {
			continue
		}
		result = append(result, info)
	}

	// Stable ordering by project then name for consistent ps output.
	sort.Slice(result, func(i, j int) bool {
		if result[i].Project != result[j].Project {
			return result[i].Project < result[j].Project
		}
		return result[i].ContainerName < result[j].ContainerName
	})

	return result, nil
}

// FindLaunch locates a managed container by container name or ID prefix.
// Returns nil (no error) when nothing matches — the caller decides
// whether that is an error for its command.
func FindLaunch(ctx context.Context, cli *Client, nameOrID string) (*model.ContainerInfo, error) {
	launches, err := ListLaunches(ctx, cli)
	if err != nil {
		return nil, err
	}

	for i := range launches {
		if launches[i].ContainerName == nameOrID || strings.HasPrefix(launches[i].ContainerID, nameOrID) {
			return &launches[i], nil
		}
	}
	return nil, nil
}

// containerToInfo converts a Docker API Container struct to the domain
// model ContainerInfo. This is a pure mapping function; launch metadata
// from labels is filled in separately by ParseInfo.
//
// The Docker API returns container names with a leading "/" prefix,
// which is stripped for display.
func containerToInfo(c types.Container) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Status:        c.State,
		Labels:        c.Labels,
	}
}

// StopContainer stops a running container by its ID using the Docker SDK.
// Docker sends SIGTERM and escalates to SIGKILL after its default
// timeout (typically 10 seconds).
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	// StopOptions with nil Timeout uses Docker's default grace period.
	if err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{}); err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop container %q", containerID),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by its ID using the Docker SDK.
// The container must be stopped first unless force is true, in which
// case Docker kills it before removal.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove container %q", containerID),
			err,
		)
	}
	return nil
}

// ContainerName derives the container name for a project's launch.
// Docker container names must match [a-zA-Z0-9][a-zA-Z0-9_.-]*, so the
// project name is sanitized and prefixed.
func ContainerName(project string) string {
	var b strings.Builder
	for _, r := range project {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-.")
	if name == "" {
		name = "api"
	}
	return "researchctl-" + name
}
