// pkg/testutil/environment.go
// DEPENDENCIES: filesystem, config, lock, configurator
// PURPOSE: Orchestrate project environments for tests

package testutil

import (
	"os"
	"path"
	"testing"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/configurator"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/lock"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment is a project ready for the engine
type TestEnvironment struct {
	FS      types.FS
	Options config.Options

	// Root is the real project directory, only set for EnvIsolated
	Root string

	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a project with default options
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType, Options: config.Defaults()}
	switch envType {
	case EnvMemoryOnly:
		env.FS = filesystem.NewMemory()
	case EnvIsolated:
		env.Root = t.TempDir()
		env.FS = filesystem.NewProject(env.Root)
	default:
		t.Fatalf("unknown environment type %d", envType)
	}
	return env
}

// Store loads the lock store from the project, failing the test on error
func (env *TestEnvironment) Store() *lock.FileStore {
	env.t.Helper()
	store, err := lock.Load(env.FS, env.Options.LockFile)
	require.NoError(env.t, err)
	return store
}

// Configurator returns a configurator bound to the project
func (env *TestEnvironment) Configurator() *configurator.Configurator {
	return configurator.New(env.FS, env.Options)
}

// WithFileTree creates files relative to the project root
func (env *TestEnvironment) WithFileTree(tree FileTree) {
	env.t.Helper()
	createFileTree(env.t, env.FS, "", tree)
}

// WithPackageFiles creates files inside the vendor directory of pkg
func (env *TestEnvironment) WithPackageFiles(pkg string, tree FileTree) {
	env.t.Helper()
	createFileTree(env.t, env.FS, path.Join(env.Options.VendorDir, pkg), tree)
}

// ReadFile returns the content of a project file
func (env *TestEnvironment) ReadFile(name string) string {
	env.t.Helper()
	data, err := afero.ReadFile(env.FS, name)
	require.NoError(env.t, err, "read %s", name)
	return string(data)
}

// FileExists reports whether a project file exists
func (env *TestEnvironment) FileExists(name string) bool {
	return filesystem.IsFile(env.FS, name)
}

// Snapshot returns every file of the project with its content
func (env *TestEnvironment) Snapshot() map[string]string {
	env.t.Helper()
	files := map[string]string{}
	err := afero.Walk(env.FS, ".", func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		data, err := afero.ReadFile(env.FS, p)
		if err != nil {
			return err
		}
		files[p] = string(data)
		return nil
	})
	require.NoError(env.t, err)
	return files
}

// FileTree represents a directory structure for testing
type FileTree map[string]interface{}

func createFileTree(t *testing.T, fs types.FS, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := path.Join(basePath, name)

		switch v := content.(type) {
		case string:
			require.NoError(t, fs.MkdirAll(path.Dir(fullPath), 0755))
			require.NoError(t, afero.WriteFile(fs, fullPath, []byte(v), 0644), "write %s", fullPath)
		case FileTree:
			require.NoError(t, fs.MkdirAll(fullPath, 0755))
			createFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}
