// Package paths locates the project dorecipe operates on.
//
// The project root is resolved in this order:
//
//   - an explicit root passed by the caller (--root)
//   - the DORECIPE_ROOT environment variable
//   - the nearest ancestor of the working directory holding a root package
//     manifest (composer.json) or a dorecipe.toml
//   - the working directory itself (UsedFallback reports this case)
//
// Every other project path (lock file, root package file) is derived from
// the root.
package paths
