package port

import (
	"fmt"
	"net"

	"github.com/mmr-tortoise/researchctl/internal/model"
)

// Scanner checks whether specific ports are available on the host machine.
//
// It uses the operating system's network stack (net.Listen) to determine
// if a port is free. This is the most reliable method because it asks the
// OS directly, rather than parsing /proc/net/* or relying on external
// commands like `lsof` or `ss` which may require elevated permissions.
//
// The struct is currently stateless, but is defined as a struct (rather
// than bare functions) so that future options (e.g., bind address) can be
// added without breaking the API. It also makes the Scanner injectable as
// a dependency for testing.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
// Currently no configuration is needed, but this constructor follows Go
// convention and allows future expansion.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsAvailable checks whether a single TCP port is free on the host.
//
// It attempts net.Listen("tcp", ":port"); if the bind succeeds, the port
// is available and the listener is immediately closed. We bind to all
// interfaces (":port" rather than "127.0.0.1:port") because the API
// server's default bind address is 0.0.0.0, so the same address space
// must be checked to avoid false positives.
func (s *Scanner) IsAvailable(port int) bool {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	// The listener was only needed to test availability.
	defer func() { _ = listener.Close() }()
	return true
}

// Check produces a CheckResult for the API port.
//
// An occupied port is a warning, not a failure: the conflicting process
// may be shutting down, and in reload workflows the user often relaunches
// over a dying server. The server itself fails fast if the conflict is
// still there at bind time.
func (s *Scanner) Check(port int) model.CheckResult {
	r := model.CheckResult{Name: "port"}
	if s.IsAvailable(port) {
		r.Status = model.StatusPass
		r.Detail = fmt.Sprintf("port %d is free", port)
	} else {
		r.Status = model.StatusWarn
		r.Detail = fmt.Sprintf("port %d is already in use — the server will fail to bind unless it frees up", port)
	}
	return r
}
