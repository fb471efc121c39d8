// pkg/handlers/envvars/envvars_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem
// PURPOSE: Test dotenv blocks, phpunit env entries and secret generation

package envvars_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/handlers/envvars"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const phpunitXML = `<?xml version="1.0" encoding="UTF-8"?>
<phpunit bootstrap="tests/bootstrap.php">
    <php>
        <ini name="error_reporting" value="-1"/>
        <server name="APP_ENV" value="test" force="true"/>
    </php>
</phpunit>
`

func action() *manifest.SetEnvVars {
	return &manifest.SetEnvVars{Vars: []manifest.EnvVar{
		{Name: "#1", Value: "Acme connection"},
		{Name: "ACME_DSN", Value: "acme://localhost"},
		{Name: "ACME_GREETING", Value: "hello world"},
	}}
}

func newContext(fs afero.Fs) handlers.Context {
	return handlers.NewContext(fs, config.Defaults(), "acme/foo", nil, zerolog.Nop())
}

func read(t *testing.T, fs afero.Fs, file string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, file)
	require.NoError(t, err)
	return string(data)
}

func TestApplyCreatesDotenv(t *testing.T) {
	fs := filesystem.NewMemory()

	_, err := envvars.NewHandler().Apply(newContext(fs), action())
	require.NoError(t, err)

	assert.Equal(t, "###> acme/foo ###\n"+
		"# Acme connection\n"+
		"ACME_DSN=acme://localhost\n"+
		"ACME_GREETING=\"hello world\"\n"+
		"###< acme/foo ###\n", read(t, fs, ".env"))
	assert.False(t, filesystem.IsFile(fs, ".env.dist"))
}

func TestApplyUpdatesExistingFiles(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, afero.WriteFile(fs, ".env", []byte("APP_ENV=dev\n"), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env.dist", []byte("APP_ENV=dev\n"), 0644))
	h := envvars.NewHandler()

	_, err := h.Apply(newContext(fs), action())
	require.NoError(t, err)

	for _, file := range []string{".env", ".env.dist"} {
		content := read(t, fs, file)
		assert.True(t, strings.HasPrefix(content, "APP_ENV=dev\n\n###> acme/foo ###\n"), file)
		assert.Contains(t, content, "ACME_DSN=acme://localhost\n")
	}

	t.Run("re-apply replaces the block in place", func(t *testing.T) {
		changed := &manifest.SetEnvVars{Vars: []manifest.EnvVar{{Name: "ACME_DSN", Value: "acme://remote"}}}
		_, err := h.Apply(newContext(fs), changed)
		require.NoError(t, err)

		content := read(t, fs, ".env")
		assert.Equal(t, 1, strings.Count(content, "###> acme/foo ###"))
		assert.Contains(t, content, "ACME_DSN=acme://remote\n")
		assert.NotContains(t, content, "ACME_GREETING")
	})

	t.Run("unapply removes the block", func(t *testing.T) {
		_, err := h.Unapply(newContext(fs), action())
		require.NoError(t, err)
		assert.Equal(t, "APP_ENV=dev\n", read(t, fs, ".env"))
		assert.Equal(t, "APP_ENV=dev\n", read(t, fs, ".env.dist"))
	})
}

func TestApplyPhpunit(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, afero.WriteFile(fs, "phpunit.xml.dist", []byte(phpunitXML), 0644))
	require.NoError(t, afero.WriteFile(fs, "phpunit.xml", []byte(phpunitXML), 0644))
	h := envvars.NewHandler()

	_, err := h.Apply(newContext(fs), action())
	require.NoError(t, err)

	content := read(t, fs, "phpunit.xml.dist")
	assert.Contains(t, content, "<!-- ###+ acme/foo ### -->")
	assert.Contains(t, content, "<!-- Acme connection -->")
	assert.Contains(t, content, `<env name="ACME_DSN" value="acme://localhost"/>`)
	assert.Contains(t, content, `<env name="ACME_GREETING" value="hello world"/>`)
	assert.Contains(t, content, "<!-- ###- acme/foo ### -->")
	assert.Less(t, strings.Index(content, "APP_ENV"), strings.Index(content, "###+ acme/foo"))
	assert.Less(t, strings.Index(content, "###- acme/foo"), strings.Index(content, "</php>"))

	assert.NotContains(t, read(t, fs, "phpunit.xml"), "acme/foo", "only the first phpunit file is configured")

	t.Run("re-apply keeps a single block", func(t *testing.T) {
		_, err := h.Apply(newContext(fs), action())
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(read(t, fs, "phpunit.xml.dist"), "###+ acme/foo ###"))
	})

	t.Run("unapply removes the block", func(t *testing.T) {
		_, err := h.Unapply(newContext(fs), action())
		require.NoError(t, err)
		content := read(t, fs, "phpunit.xml.dist")
		assert.NotContains(t, content, "acme/foo")
		assert.NotContains(t, content, "ACME_DSN")
		assert.Contains(t, content, `<server name="APP_ENV" value="test" force="true"/>`)
	})
}

func TestApplySkipsPhpunitWithDotenvTest(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, afero.WriteFile(fs, "phpunit.xml.dist", []byte(phpunitXML), 0644))
	require.NoError(t, afero.WriteFile(fs, ".env.test", []byte("KERNEL_CLASS=App\\Kernel\n"), 0644))

	_, err := envvars.NewHandler().Apply(newContext(fs), action())
	require.NoError(t, err)
	assert.Equal(t, phpunitXML, read(t, fs, "phpunit.xml.dist"))
}

func TestGenerateSecret(t *testing.T) {
	fs := filesystem.NewMemory()
	require.NoError(t, afero.WriteFile(fs, "phpunit.xml.dist", []byte(phpunitXML), 0644))
	a := &manifest.SetEnvVars{Vars: []manifest.EnvVar{
		{Name: "APP_SECRET", Value: "%generate(secret)%"},
		{Name: "SHORT_SECRET", Value: "%generate(secret, 4)%"},
	}}

	_, err := envvars.NewHandler().Apply(newContext(fs), a)
	require.NoError(t, err)

	dotenv := read(t, fs, ".env")
	secret := regexp.MustCompile(`APP_SECRET=([0-9a-f]+)\n`).FindStringSubmatch(dotenv)
	require.Len(t, secret, 2)
	assert.Len(t, secret[1], 32)
	assert.Regexp(t, `SHORT_SECRET=[0-9a-f]{8}\n`, dotenv)

	assert.Contains(t, read(t, fs, "phpunit.xml.dist"), `value="`+secret[1]+`"`, "same secret in both files")
}

func TestEscape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"mysql://db:3306/app?serverVersion=8", "mysql://db:3306/app?serverVersion=8"},
		{"two words", `"two words"`},
		{`say "hi"`, `"say \"hi\""`},
		{"a&b", `"a&b"`},
		{"tab\there", `"tab\there"`},
		{"line\nbreak", `"line\nbreak"`},
		{`back\slash and space`, `"back\\slash and space"`},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, envvars.Escape(tt.in))
		})
	}
}
