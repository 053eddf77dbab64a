// Package port implements port availability scanning for launch preflight.
//
// Before handing off to the API server, the launcher checks whether the
// resolved API port is free on the host. A bind conflict discovered here
// produces a clear doctor warning instead of the server's own "address
// already in use" stack trace after the hand-off.
package port
