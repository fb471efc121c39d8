// pkg/handlers/files/files_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test writing and removing recipe files

package files_test

import (
	"testing"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/handlers/files"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func action() *manifest.WriteFiles {
	return &manifest.WriteFiles{Files: []manifest.FileSpec{
		{Target: "%CONFIG_DIR%/packages/acme.yaml", Contents: "acme: ~\n"},
		{Target: "%BIN_DIR%/acme", Contents: "#!/bin/sh\n", Executable: true},
	}}
}

func TestApply(t *testing.T) {
	fs := filesystem.NewMemory()
	ctx := handlers.NewContext(fs, config.Defaults(), "acme/foo", nil, zerolog.Nop())
	h := files.NewHandler()

	result, err := h.Apply(ctx, action())
	require.NoError(t, err)
	assert.Equal(t, []string{"config/packages/acme.yaml", "bin/acme"}, result.Files)
	assert.Equal(t, "2 files written", result.Message)

	data, err := afero.ReadFile(fs, "config/packages/acme.yaml")
	require.NoError(t, err)
	assert.Equal(t, "acme: ~\n", string(data))

	info, err := fs.Stat("bin/acme")
	require.NoError(t, err)
	assert.Equal(t, "-rwxr-xr-x", info.Mode().Perm().String())
}

func TestApplyKeepsForeignFiles(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, afero.WriteFile(fs, "config/packages/acme.yaml", []byte("mine\n"), 0644))
	h := files.NewHandler()

	t.Run("file not owned is kept", func(t *testing.T) {
		ctx := handlers.NewContext(fs, config.Defaults(), "acme/foo", nil, zerolog.Nop())
		result, err := h.Apply(ctx, action())
		require.NoError(t, err)
		assert.Equal(t, []string{"bin/acme"}, result.Files)

		data, _ := afero.ReadFile(fs, "config/packages/acme.yaml")
		assert.Equal(t, "mine\n", string(data))
	})

	t.Run("file with the recipe content is taken over", func(t *testing.T) {
		fs := filesystem.NewMemory()
		require.NoError(t, afero.WriteFile(fs, "config/packages/acme.yaml", []byte("acme: ~\n"), 0644))

		ctx := handlers.NewContext(fs, config.Defaults(), "acme/foo", nil, zerolog.Nop())
		result, err := h.Apply(ctx, action())
		require.NoError(t, err)
		assert.Equal(t, []string{"config/packages/acme.yaml", "bin/acme"}, result.Files)
	})

	t.Run("owned file is overwritten", func(t *testing.T) {
		ctx := handlers.NewContext(fs, config.Defaults(), "acme/foo", []string{"config/packages/acme.yaml", "bin/acme"}, zerolog.Nop())
		result, err := h.Apply(ctx, action())
		require.NoError(t, err)
		assert.Equal(t, []string{"config/packages/acme.yaml", "bin/acme"}, result.Files)

		data, _ := afero.ReadFile(fs, "config/packages/acme.yaml")
		assert.Equal(t, "acme: ~\n", string(data))
	})
}

func TestUnapply(t *testing.T) {
	fs := filesystem.NewMemory()
	h := files.NewHandler()

	ctx := handlers.NewContext(fs, config.Defaults(), "acme/foo", nil, zerolog.Nop())
	applied, err := h.Apply(ctx, action())
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, "config/services.yaml", []byte("services: ~\n"), 0644))

	ctx = handlers.NewContext(fs, config.Defaults(), "acme/foo", applied.Files, zerolog.Nop())
	result, err := h.Unapply(ctx, action())
	require.NoError(t, err)
	assert.Equal(t, []string{"config/packages/acme.yaml", "bin/acme"}, result.Files)

	for _, path := range []string{"config/packages/acme.yaml", "bin/acme", "config/packages", "bin"} {
		exists, err := filesystem.Exists(fs, path)
		require.NoError(t, err)
		assert.False(t, exists, path)
	}
	assert.True(t, filesystem.IsFile(fs, "config/services.yaml"))

	t.Run("already removed files are tolerated", func(t *testing.T) {
		result, err := h.Unapply(ctx, action())
		require.NoError(t, err)
		assert.Empty(t, result.Files)
		assert.Equal(t, "0 files removed", result.Message)
	})

	t.Run("files the recipe did not write are left alone", func(t *testing.T) {
		require.NoError(t, afero.WriteFile(fs, "bin/acme", []byte("user\n"), 0755))
		notOwned := handlers.NewContext(fs, config.Defaults(), "acme/foo", nil, zerolog.Nop())
		_, err := h.Unapply(notOwned, action())
		require.NoError(t, err)
		assert.True(t, filesystem.IsFile(fs, "bin/acme"))
	})
}
