// Package config handles loading and analysis of researchctl.json files.
//
// The launcher config supports JSONC (JSON with Comments), so this package
// uses github.com/tidwall/jsonc to strip comments before parsing with the
// standard encoding/json library.
//
// Key responsibilities:
//   - Locate researchctl.json in standard paths within a project
//   - Parse it (with JSONC support) and apply launcher defaults
//   - Locate the project root by walking up from the caller's directory
package config
