// Package manifest handles dependency manifests for the launched project.
//
// Two manifest formats are supported:
//   - pip requirements files (requirements.txt), parsed line-by-line with
//     support for comments, option lines, extras, version specifiers, and
//     environment markers
//   - conda environment files (environment.yml), parsed with yaml.v3,
//     including the nested pip: dependency list
//
// Both formats normalize into the same Requirement model, so the rest of
// the launcher does not care which one a project uses. Installation shells
// out to pip via the discovered interpreter's "-m pip" entry point.
package manifest
