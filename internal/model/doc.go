// Package model defines the domain types and value objects for the
// researchctl CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (CheckResult, Interpreter, ServerSettings, ContainerInfo)
// are transient representations built up during a single launcher run —
// there are no persistent state files. Container-mode launches persist
// their metadata via Docker labels (see internal/docker).
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
