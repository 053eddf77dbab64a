// Package python provides Python interpreter discovery and module
// import verification.
//
// This package wraps the Python CLI (via os/exec) to locate an
// interpreter on PATH, probe its version, and check whether the modules
// the API server needs are importable. It serves as the Python
// integration layer for the researchctl CLI.
//
// Design decisions:
//   - We shell out to the interpreter rather than parsing site-packages
//     directories, because only the interpreter itself knows its import
//     machinery (virtualenvs, .pth files, namespace packages).
//   - The Prober struct is stateless but exists as a receiver to allow
//     future extension (e.g., a configurable candidate list).
//   - Fatal discovery errors are wrapped in model.CLIError with
//     ExitInterpreterNotFound so the CLI exits with status 1, which is
//     part of the launcher's external contract.
package python
