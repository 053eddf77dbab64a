// Package docker provides a wrapper around the Docker Engine SDK client
// for container-mode launches of the API server.
//
// The primary purpose of this package is to abstract Docker API
// interactions and provide researchctl-specific functionality such as
// label-based container discovery (for the ps and stop commands) and
// automatic Docker socket detection.
package docker
