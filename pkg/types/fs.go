package types

import "github.com/spf13/afero"

// FS is the filesystem the engine mutates. Production code uses the OS
// filesystem rooted at the project; tests use an in-memory one.
type FS = afero.Fs
