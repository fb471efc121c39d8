package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ExplicitRoot(t *testing.T) {
	root := t.TempDir()

	p, err := New(root)
	require.NoError(t, err)

	assert.Equal(t, root, p.Root())
	assert.False(t, p.UsedFallback())
	assert.Equal(t, filepath.Join(root, "composer.json"), p.RootPackagePath())
	assert.Equal(t, filepath.Join(root, "dorecipe.toml"), p.ProjectConfigPath())
	assert.Equal(t, filepath.Join(root, "dorecipe.lock"), p.Abs("dorecipe.lock"))
	assert.Equal(t, "/etc/hosts", p.Abs("/etc/hosts"))
}

func TestNew_EnvRoot(t *testing.T) {
	root := t.TempDir()
	t.Setenv(EnvProjectRoot, root)

	p, err := New("")
	require.NoError(t, err)
	assert.Equal(t, root, p.Root())
	assert.False(t, p.UsedFallback())
}

func TestNew_DiscoversAncestor(t *testing.T) {
	t.Setenv(EnvProjectRoot, "")
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "composer.json"), []byte("{}"), 0644))
	nested := filepath.Join(root, "src", "Controller")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	p, err := New("")
	require.NoError(t, err)

	resolved, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(p.Root())
	require.NoError(t, err)
	assert.Equal(t, resolved, got)
	assert.False(t, p.UsedFallback())
}

func TestRel(t *testing.T) {
	p, err := New("/srv/app")
	require.NoError(t, err)

	rel, err := p.Rel("/srv/app/config/bundles.toml")
	require.NoError(t, err)
	assert.Equal(t, "config/bundles.toml", rel)

	_, err = p.Rel("/srv/other/file")
	assert.Error(t, err)
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "projects/app"), expandHome("~/projects/app"))
	assert.Equal(t, "/abs/path", expandHome("/abs/path"))
}
