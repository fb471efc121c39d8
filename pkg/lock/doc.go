// Package lock records which recipe is applied to which package.
//
// The lock file is a JSON object keyed by package name. Each entry keeps the
// provenance of the applied recipe, the package version, the actions as they
// were applied (needed to undo them after the package is gone) and the
// project files the recipe wrote. The file is read once at the start of a run
// and written once at the end, atomically. A lock file that cannot be read or
// parsed is fatal: treating it as empty would re-apply or orphan recipes.
package lock
