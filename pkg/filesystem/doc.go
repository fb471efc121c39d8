// Package filesystem provides the project filesystem used by dorecipe.
//
// All engine paths are project-relative: NewProject roots an afero
// filesystem at the project directory, and NewMemory does the same over an
// in-memory tree for tests. Writes go through WriteFileAtomic so a failure
// never leaves a truncated file behind.
package filesystem
