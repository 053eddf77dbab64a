package docker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// Label key constants define the Docker label keys used to persist
// launch metadata on containers started in container mode. These labels
// are the sole persistence mechanism — there is no external state file;
// the ps and stop commands reconstruct everything from Docker queries.
//
// All keys share the "researchctl." prefix to namespace them and avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all researchctl labels.
	LabelPrefix = "researchctl."

	// LabelManagedBy identifies containers launched by researchctl.
	// This is the primary label used for filtering and discovery.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelProject stores the project name the launch belongs to.
	LabelProject = LabelPrefix + "project"

	// LabelEntryPoint stores the entry point script the container runs,
	// relative to the project root.
	LabelEntryPoint = LabelPrefix + "entry-point"

	// LabelPort stores the published API port.
	LabelPort = LabelPrefix + "port"

	// LabelCreatedAt stores the RFC3339 timestamp of the launch.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
const ManagedByValue = "researchctl"

// Launch captures the metadata recorded on a container-mode launch.
// BuildLabels encodes it into labels; ParseInfo decodes labels back.
type Launch struct {
	// Project is the project name (container naming and ps output).
	Project string

	// EntryPoint is the script the container runs.
	EntryPoint string

	// Port is the published API port.
	Port int

	// CreatedAt is the launch timestamp.
	CreatedAt time.Time
}

// BuildLabels constructs the Docker label map for a launch. Applying
// these labels to the container allows the ps command to reconstruct
// the launch metadata from container inspection alone.
func BuildLabels(l *Launch) map[string]string {
	return map[string]string{
		LabelManagedBy:  ManagedByValue,
		LabelProject:    l.Project,
		LabelEntryPoint: l.EntryPoint,
		LabelPort:       strconv.Itoa(l.Port),
		// UTC keeps the recorded timestamp independent of the host
		// machine's timezone.
		LabelCreatedAt: l.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// ParseInfo fills the launch-metadata fields of a ContainerInfo from its
// Docker labels. This is the inverse of BuildLabels.
//
// Required labels: managed-by, project, entry-point. A container missing
// them was not created by researchctl (or its labels were tampered with)
// and is reported as an error. Port and created-at degrade gracefully —
// a missing or malformed value yields the zero value rather than an
// error, because ps output is still useful without them.
func ParseInfo(info *model.ContainerInfo) error {
	labels := info.Labels

	var missing []string
	for _, key := range []string{LabelManagedBy, LabelProject, LabelEntryPoint} {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required Docker labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}

	info.Project = labels[LabelProject]
	info.EntryPoint = labels[LabelEntryPoint]

	if port, err := strconv.Atoi(labels[LabelPort]); err == nil {
		info.Port = port
	}
	if ts, err := time.Parse(time.RFC3339, labels[LabelCreatedAt]); err == nil {
		info.CreatedAt = ts
	}

	return nil
}
