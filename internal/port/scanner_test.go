package port

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// occupyPort binds a TCP listener on an OS-assigned free port and returns
// the port number. The listener is closed via t.Cleanup, so the port is
// held for the duration of the test.
func occupyPort(t *testing.T) int {
	t.Helper()

	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err, "failed to bind an ephemeral port")
	t.Cleanup(func() { _ = listener.Close() })

	return listener.Addr().(*net.TCPAddr).Port
}

// TestIsAvailable_OccupiedPort verifies that a port held by another
// listener is reported as unavailable.
func TestIsAvailable_OccupiedPort(t *testing.T) {
	port := occupyPort(t)
	assert.False(t, NewScanner().IsAvailable(port))
}

// TestIsAvailable_FreePort verifies that a just-released port is
// reported as available.
func TestIsAvailable_FreePort(t *testing.T) {
	// Bind and immediately release to obtain a port number that is
	// almost certainly free. A race with another process grabbing the
	// same port in between is theoretically possible but negligible.
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := listener.Addr().(*net.TCPAddr).Port
	require.NoError(t, listener.Close())

	assert.True(t, NewScanner().IsAvailable(port))
}

// TestCheck verifies the preflight result mapping: free ports pass,
// occupied ports warn (never fail).
func TestCheck(t *testing.T) {
	occupied := occupyPort(t)

	r := NewScanner().Check(occupied)
	assert.Equal(t, "port", r.Name)
	assert.Equal(t, model.StatusWarn, r.Status, "an occupied port is a warning, not a launch stopper")
	assert.Contains(t, r.Detail, "already in use")
}
