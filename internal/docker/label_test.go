package docker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// TestBuildLabels verifies label encoding for a container-mode launch.
func TestBuildLabels(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	labels := BuildLabels(&Launch{
		Project:    "deep-research-agent",
		EntryPoint: "api/run_api.py",
		Port:       8000,
		CreatedAt:  created,
	})

	assert.Equal(t, "researchctl", labels[LabelManagedBy])
	assert.Equal(t, "deep-research-agent", labels[LabelProject])
	assert.Equal(t, "api/run_api.py", labels[LabelEntryPoint])
	assert.Equal(t, "8000", labels[LabelPort])
	assert.Equal(t, "2026-03-14T09:30:00Z", labels[LabelCreatedAt])
}

// TestBuildLabels_ParseInfo_RoundTrip verifies that ParseInfo is the
// inverse of BuildLabels.
func TestBuildLabels_ParseInfo_RoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	launch := &Launch{
		Project:    "deep-research-agent",
		EntryPoint: "api/run_api.py",
		Port:       9000,
		CreatedAt:  created,
	}

	info := model.ContainerInfo{
		ContainerID:   "abc123",
		ContainerName: "researchctl-deep-research-agent",
		Labels:        BuildLabels(launch),
	}
	require.NoError(t, ParseInfo(&info))

	assert.Equal(t, "deep-research-agent", info.Project)
	assert.Equal(t, "api/run_api.py", info.EntryPoint)
	assert.Equal(t, 9000, info.Port)
	assert.True(t, created.Equal(info.CreatedAt))
}

// TestParseInfo_MissingLabels verifies that containers without the
// required labels are rejected, with all missing keys named at once.
func TestParseInfo_MissingLabels(t *testing.T) {
	info := model.ContainerInfo{Labels: map[string]string{
		LabelManagedBy: ManagedByValue,
	}}

	err := ParseInfo(&info)
	require.Error(t, err)
	assert.Contains(t, err.Error(), LabelProject)
	assert.Contains(t, err.Error(), LabelEntryPoint)
}

// TestParseInfo_ForeignContainer verifies that a container carrying the
// managed-by label with the wrong value is rejected.
func TestParseInfo_ForeignContainer(t *testing.T) {
	info := model.ContainerInfo{Labels: map[string]string{
		LabelManagedBy:  "some-other-tool",
		LabelProject:    "p",
		LabelEntryPoint: "e.py",
	}}

	err := ParseInfo(&info)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected value")
}

// TestParseInfo_DegradedMetadata verifies that malformed port and
// timestamp labels degrade to zero values instead of failing the parse.
func TestParseInfo_DegradedMetadata(t *testing.T) {
	info := model.ContainerInfo{Labels: map[string]string{
		LabelManagedBy:  ManagedByValue,
		LabelProject:    "p",
		LabelEntryPoint: "e.py",
		LabelPort:       "not-a-port",
		LabelCreatedAt:  "yesterday",
	}}

	require.NoError(t, ParseInfo(&info))
	assert.Zero(t, info.Port)
	assert.True(t, info.CreatedAt.IsZero())
}

// TestContainerName verifies Docker-safe container name derivation.
func TestContainerName(t *testing.T) {
	tests := []struct {
		project  string
		expected string
	}{
		{"deep-research-agent", "researchctl-deep-research-agent"},
		{"My Project!", "researchctl-My-Project"},
		{"...", "researchctl-api"},
		{"", "researchctl-api"},
	}

	for _, tt := range tests {
		t.Run(tt.project, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainerName(tt.project))
		})
	}
}
