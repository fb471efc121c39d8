// pkg/commands/status/status_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: In-memory filesystem, lock store
// PURPOSE: Test listing applied recipes from the lock file

package status_test

import (
	"testing"

	"github.com/arthur-debert/dorecipe/pkg/commands/status"
	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/lock"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, env *testutil.TestEnvironment) {
	t.Helper()
	store := env.Store()
	store.Put("acme/zeta", lock.Entry{
		Version:    "2.0.0",
		Provenance: manifest.ParseProvenance("acme/zeta:2.0@github.com/acme/recipes:main"),
		Actions:    []manifest.Action{&manifest.GitignoreEntries{Lines: []string{"/var/"}}},
	})
	store.Put("acme/alpha", lock.Entry{
		Version:    "1.0.0",
		Provenance: manifest.AutoGenerated("acme/alpha", "1.0"),
		Actions: []manifest.Action{
			&manifest.WriteFiles{Files: []manifest.FileSpec{{Target: "config/alpha.yaml", Contents: "a: 1\n"}}},
			&manifest.PostInstallMessage{Lines: []string{"hi"}},
		},
		Files: []string{"config/alpha.yaml"},
	})
	require.NoError(t, store.Persist())
}

func TestRunListsRecipes(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	seed(t, env)

	result, err := status.Run(status.Options{FS: env.FS, Config: &env.Options})
	require.NoError(t, err)

	assert.Equal(t, env.Options.LockFile, result.LockFile)
	require.Len(t, result.Recipes, 2)

	alpha := result.Recipes[0]
	assert.Equal(t, "acme/alpha", alpha.Package)
	assert.Equal(t, "1.0.0", alpha.Version)
	assert.Equal(t, manifest.AutoGenerated("acme/alpha", "1.0").String(), alpha.Origin)
	assert.Equal(t, []string{"write-files", "post-install-message"}, alpha.Actions)
	assert.Equal(t, []string{"config/alpha.yaml"}, alpha.Files)

	zeta := result.Recipes[1]
	assert.Equal(t, "acme/zeta", zeta.Package)
	assert.Equal(t, "acme/zeta:2.0@github.com/acme/recipes:main", zeta.Origin)
	assert.Equal(t, []string{"gitignore-entries"}, zeta.Actions)
	assert.Empty(t, zeta.Files)
	assert.Empty(t, result.NotApplied)
}

func TestRunFiltersPackages(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	seed(t, env)

	result, err := status.Run(status.Options{
		FS:       env.FS,
		Config:   &env.Options,
		Packages: []string{"acme/zeta", "acme/missing"},
	})
	require.NoError(t, err)

	require.Len(t, result.Recipes, 1)
	assert.Equal(t, "acme/zeta", result.Recipes[0].Package)
	assert.Equal(t, []string{"acme/missing"}, result.NotApplied)
}

func TestRunEmptyProject(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)

	result, err := status.Run(status.Options{FS: env.FS, Config: &env.Options})
	require.NoError(t, err)
	assert.Empty(t, result.Recipes)
}

func TestRunCorruptLock(t *testing.T) {
	env := testutil.NewTestEnvironment(t, testutil.EnvMemoryOnly)
	env.WithFileTree(testutil.FileTree{env.Options.LockFile: "{not json"})

	_, err := status.Run(status.Options{FS: env.FS, Config: &env.Options})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrStoreCorruption))
}
