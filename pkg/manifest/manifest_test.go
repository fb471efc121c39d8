// pkg/manifest/manifest_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Test recipe parsing, kind validation, provenance and the persisted action form

package manifest_test

import (
	"fmt"
	"testing"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullRecipe = `
post-install-message:
  - 'line 1 %CONFIG_DIR%'
  - 'line 2 %VAR_DIR%'
write-files:
  '%CONFIG_DIR%/packages/acme.yaml': "acme:\n  enabled: true\n"
  '%BIN_DIR%/acme':
    contents: "#!/bin/sh\n"
    executable: true
bundles:
  Acme\FooBundle\AcmeFooBundle: [all]
  Acme\FooBundle\DebugBundle: [dev, test]
env:
  '#1': Acme settings
  ACME_DSN: 'null://localhost'
  ACME_SECRET: '%generate(secret)%'
gitignore:
  - '/%VAR_DIR%/acme/'
copy-from-package:
  assets/: '%PUBLIC_DIR%/bundles/acme/'
`

func TestParse(t *testing.T) {
	prov := manifest.NewProvenance("acme/foo", "1.0", "github.com/acme/recipes", "main")
	m, err := manifest.Parse("acme/foo", prov, []byte(fullRecipe), nil)
	require.NoError(t, err)

	assert.Equal(t, "acme/foo", m.PackageName)
	assert.Equal(t, []manifest.Kind{
		manifest.KindPostInstallMessage,
		manifest.KindWriteFiles,
		manifest.KindRegisterModules,
		manifest.KindSetEnvVars,
		manifest.KindGitignoreEntries,
		manifest.KindCopyFromPackage,
	}, m.Kinds(), "declaration order is kept")

	a, ok := m.Action(manifest.KindWriteFiles)
	require.True(t, ok)
	files := a.(*manifest.WriteFiles)
	require.Len(t, files.Files, 2)
	assert.Equal(t, "%CONFIG_DIR%/packages/acme.yaml", files.Files[0].Target)
	assert.Equal(t, "acme:\n  enabled: true\n", files.Files[0].Contents)
	assert.False(t, files.Files[0].Executable)
	assert.True(t, files.Files[1].Executable)

	a, _ = m.Action(manifest.KindRegisterModules)
	modules := a.(*manifest.RegisterModules)
	assert.Equal(t, []manifest.Module{
		{Class: `Acme\FooBundle\AcmeFooBundle`, Envs: []string{"all"}},
		{Class: `Acme\FooBundle\DebugBundle`, Envs: []string{"dev", "test"}},
	}, modules.Modules)

	a, _ = m.Action(manifest.KindSetEnvVars)
	vars := a.(*manifest.SetEnvVars)
	require.Len(t, vars.Vars, 3)
	assert.True(t, vars.Vars[0].IsComment())
	assert.Equal(t, manifest.EnvVar{Name: "ACME_DSN", Value: "null://localhost"}, vars.Vars[1])

	a, _ = m.Action(manifest.KindPostInstallMessage)
	assert.Equal(t, []string{"line 1 %CONFIG_DIR%", "line 2 %VAR_DIR%"}, a.(*manifest.PostInstallMessage).Lines)

	a, _ = m.Action(manifest.KindCopyFromPackage)
	assert.Equal(t, []manifest.CopySpec{{Source: "assets/", Target: "%PUBLIC_DIR%/bundles/acme/"}},
		a.(*manifest.CopyFromPackage).Entries)
}

func TestParseJSON(t *testing.T) {
	data := `{"register-modules": {"Dummy\\Dummy": ["all"]}, "post-install-message": ["hello"]}`
	m, err := manifest.Parse("dummy/dummy", manifest.AutoGenerated("dummy/dummy", "1.0"), []byte(data), nil)
	require.NoError(t, err)

	assert.Equal(t, []manifest.Kind{manifest.KindRegisterModules, manifest.KindPostInstallMessage}, m.Kinds())
	a, _ := m.Action(manifest.KindRegisterModules)
	assert.Equal(t, []string{`Dummy\Dummy`}, a.(*manifest.RegisterModules).Classes())
}

func TestParseRejectsInvalidRecipes(t *testing.T) {
	tests := []struct {
		name   string
		recipe string
	}{
		{"unknown kind", "run-script: [echo]\n"},
		{"duplicate through alias", "env: {A: b}\nset-env-vars: {C: d}\n"},
		{"manifest is a list", "- write-files\n"},
		{"write-files not a mapping", "write-files: [a, b]\n"},
		{"write-files nested list", "write-files:\n  a.txt: [x]\n"},
		{"write-files both contents and source", "write-files:\n  a.txt: {contents: x, source: y}\n"},
		{"write-files source without resolver", "write-files:\n  a.txt: {source: y}\n"},
		{"bundles is a string", "bundles: BundleName\n"},
		{"bundle envs is a string", "bundles:\n  Dummy\\Dummy: all\n"},
		{"bundle env is nested", "bundles:\n  Dummy\\Dummy: [[all]]\n"},
		{"bundle envs keyed by name", "bundles:\n  Dummy\\Dummy: {first: all}\n"},
		{"env value is a list", "env:\n  A: [b]\n"},
		{"gitignore not a list", "gitignore: /var/\n"},
		{"message entry nested", "post-install-message:\n  - {a: b}\n"},
		{"copy target empty", "copy-from-package:\n  a: ''\n"},
		{"secret size not a number", "write-files:\n  config/packages/foo.yaml: 'foo: true'\nenv:\n  APP_SECRET: '%generate(secret, abc)%'\n"},
		{"secret size zero", "env:\n  APP_SECRET: '%generate(secret, 0)%'\n"},
		{"secret with extra arguments", "env:\n  APP_SECRET: 'x%generate(secret, 8, hex)%'\n"},
		{"not yaml", "write-files: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := manifest.Parse("acme/foo", manifest.Provenance{}, []byte(tt.recipe), nil)
			require.Error(t, err)
			assert.Nil(t, m, "no partial manifest is returned")
			assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), "got %v", err)
			assert.Equal(t, "acme/foo", errors.GetErrorDetails(err)["package"])
		})
	}
}

func TestParseAcceptsGenerateDirectives(t *testing.T) {
	recipe := "env:\n  '#1': '%generate(secret, abc)% in a comment'\n  APP_SECRET: '%generate(secret)%'\n  SHORT: '%generate(secret, 8)%'\n  OTHER: '%generate(uuid)%'\n"
	m, err := manifest.Parse("acme/foo", manifest.Provenance{}, []byte(recipe), nil)
	require.NoError(t, err)
	a, ok := m.Action(manifest.KindSetEnvVars)
	require.True(t, ok)
	assert.Len(t, a.(*manifest.SetEnvVars).Vars, 4)
}

func TestSecretSize(t *testing.T) {
	tests := []struct {
		match   string
		size    int
		ok      bool
		invalid bool
	}{
		{"%generate(secret)%", manifest.DefaultSecretBytes, true, false},
		{"%generate(secret, 32)%", 32, true, false},
		{"%generate( secret ,4)%", 4, true, false},
		{"%generate(uuid)%", 0, false, false},
		{"plain", 0, false, false},
		{"%generate(secret, abc)%", 0, true, true},
		{"%generate(secret, -2)%", 0, true, true},
		{"%generate(secret, 1, 2)%", 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.match, func(t *testing.T) {
			size, ok, err := manifest.SecretSize(tt.match)
			assert.Equal(t, tt.size, size)
			assert.Equal(t, tt.ok, ok)
			if tt.invalid {
				assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseRequiresPackageName(t *testing.T) {
	_, err := manifest.Parse("", manifest.Provenance{}, []byte("env: {A: b}"), nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestParseEmptyRecipe(t *testing.T) {
	m, err := manifest.Parse("acme/foo", manifest.Provenance{}, []byte(""), nil)
	require.NoError(t, err)
	assert.True(t, m.IsEmpty())
}

func TestParseResolvesSources(t *testing.T) {
	recipe := "write-files:\n  '%CONFIG_DIR%/routes/acme.yaml': {source: config/routes/acme.yaml}\n"
	resolve := func(source string) ([]byte, error) {
		if source == "config/routes/acme.yaml" {
			return []byte("acme: {resource: .}\n"), nil
		}
		return nil, fmt.Errorf("missing %s", source)
	}

	m, err := manifest.Parse("acme/foo", manifest.Provenance{}, []byte(recipe), resolve)
	require.NoError(t, err)
	a, _ := m.Action(manifest.KindWriteFiles)
	assert.Equal(t, "acme: {resource: .}\n", a.(*manifest.WriteFiles).Files[0].Contents)

	_, err = manifest.Parse("acme/foo", manifest.Provenance{}, []byte("write-files:\n  x: {source: nope}\n"), resolve)
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

func TestParseDocument(t *testing.T) {
	doc := `
origin: acme/foo:1.2@github.com/symfony/recipes-contrib:main
is_contrib: true
manifest:
  env:
    ACME_URL: https://acme.test
`
	m, err := manifest.ParseDocument("acme/foo", []byte(doc), nil)
	require.NoError(t, err)
	assert.True(t, m.Contrib)
	assert.True(t, m.IsContrib())
	assert.Equal(t, "acme/foo:1.2@github.com/symfony/recipes-contrib:main", m.Provenance.String())
	assert.Equal(t, []manifest.Kind{manifest.KindSetEnvVars}, m.Kinds())
}

func TestNormalizeModules(t *testing.T) {
	t.Run("sorted classes", func(t *testing.T) {
		modules, err := manifest.NormalizeModules(map[string]interface{}{
			`Zed\ZedBundle`:   []interface{}{"all"},
			`Acme\AcmeBundle`: []interface{}{"dev", "test", "dev"},
		})
		require.NoError(t, err)
		assert.Equal(t, []manifest.Module{
			{Class: `Acme\AcmeBundle`, Envs: []string{"dev", "test"}},
			{Class: `Zed\ZedBundle`, Envs: []string{"all"}},
		}, modules)
	})

	t.Run("numeric keys are ordered by index", func(t *testing.T) {
		modules, err := manifest.NormalizeModules(map[string]interface{}{
			`Dummy\Dummy`: map[string]interface{}{"1": "test", "0": "all"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"all", "test"}, modules[0].Envs)
	})

	t.Run("empty mapping and empty list", func(t *testing.T) {
		modules, err := manifest.NormalizeModules(map[string]interface{}{})
		require.NoError(t, err)
		assert.Empty(t, modules)

		modules, err = manifest.NormalizeModules([]interface{}{})
		require.NoError(t, err)
		assert.Empty(t, modules)
	})

	invalid := []struct {
		name  string
		value interface{}
	}{
		{"string instead of mapping", "BundleName"},
		{"list instead of mapping", []interface{}{"BundleName"}},
		{"string instead of set", map[string]interface{}{`Dummy\Dummy`: "all"}},
		{"nested env entry", map[string]interface{}{`Dummy\Dummy`: []interface{}{[]interface{}{"all"}}}},
		{"empty class", map[string]interface{}{"": []interface{}{"all"}}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			_, err := manifest.NormalizeModules(tt.value)
			assert.True(t, errors.IsErrorCode(err, errors.ErrValidation), "got %v", err)
		})
	}
}

func TestProvenance(t *testing.T) {
	tests := []struct {
		input  string
		pkg    string
		source string
		ref    string
		auto   bool
		parsed bool
	}{
		{"dummy/dummy:1.0@github.com/symfony/recipes:master", "dummy/dummy", "github.com/symfony/recipes", "master", false, true},
		{"dummy/dummy:1.0.0@auto-generated recipe", "dummy/dummy", "auto-generated recipe", "", true, true},
		{"acme/foo:2.1@local", "acme/foo", "local", "", false, true},
		{"not a provenance", "", "", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			p := manifest.ParseProvenance(tt.input)
			assert.Equal(t, tt.input, p.String(), "round-trips")
			assert.Equal(t, tt.pkg, p.Package)
			assert.Equal(t, tt.source, p.Source)
			assert.Equal(t, tt.ref, p.Ref)
			assert.Equal(t, tt.auto, p.AutoGenerated)
			assert.Equal(t, tt.parsed, p.Parsed())
		})
	}

	assert.Equal(t, "acme/foo:1.0@auto-generated recipe", manifest.AutoGenerated("acme/foo", "1.0").String())
	assert.Equal(t, "github.com/acme/recipes:main", manifest.NewProvenance("acme/foo", "1.0", "github.com/acme/recipes", "main").Origin())
	assert.True(t, manifest.ParseProvenance("a/b:1@github.com/symfony/recipes-contrib:main").IsContrib())
	assert.True(t, manifest.Provenance{}.IsZero())
	assert.Equal(t, "", manifest.Provenance{}.String())
}

func TestLookupKind(t *testing.T) {
	aliases := map[string]manifest.Kind{
		"copy-from-recipe":    manifest.KindWriteFiles,
		"bundles":             manifest.KindRegisterModules,
		"env":                 manifest.KindSetEnvVars,
		"gitignore":           manifest.KindGitignoreEntries,
		"post-install-output": manifest.KindPostInstallMessage,
	}
	for key, want := range aliases {
		got, ok := manifest.LookupKind(key)
		assert.True(t, ok, key)
		assert.Equal(t, want, got, key)
	}
	for _, k := range manifest.Kinds() {
		got, ok := manifest.LookupKind(string(k))
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := manifest.LookupKind("composer-scripts")
	assert.False(t, ok)
}

func TestEncodeActions(t *testing.T) {
	m, err := manifest.Parse("acme/foo", manifest.Provenance{}, []byte(fullRecipe), nil)
	require.NoError(t, err)

	encoded, err := manifest.EncodeActions(m.Actions)
	require.NoError(t, err)
	require.Len(t, encoded, len(m.Actions))
	assert.Equal(t, manifest.KindPostInstallMessage, encoded[0].Kind)
	assert.NotContains(t, string(encoded[1].Payload), "enabled: true", "file contents are not persisted")

	decoded, err := manifest.DecodeEncodedActions(encoded)
	require.NoError(t, err)
	assert.Equal(t, m.Kinds(), manifest.New("acme/foo", manifest.Provenance{}, decoded...).Kinds())

	files := decoded[1].(*manifest.WriteFiles)
	assert.Equal(t, []string{"%CONFIG_DIR%/packages/acme.yaml", "%BIN_DIR%/acme"}, files.Targets())
	assert.True(t, files.Files[1].Executable)
	assert.Equal(t, m.Actions[2], decoded[2])

	_, err = manifest.DecodeEncodedActions([]manifest.EncodedAction{{Kind: "bogus"}})
	assert.True(t, errors.IsErrorCode(err, errors.ErrValidation))
}

type countingVisitor struct {
	seen []manifest.Kind
}

func (c *countingVisitor) VisitWriteFiles(a *manifest.WriteFiles) error {
	c.seen = append(c.seen, a.Kind())
	return nil
}
func (c *countingVisitor) VisitCopyFromPackage(a *manifest.CopyFromPackage) error {
	c.seen = append(c.seen, a.Kind())
	return nil
}
func (c *countingVisitor) VisitRegisterModules(a *manifest.RegisterModules) error {
	c.seen = append(c.seen, a.Kind())
	return fmt.Errorf("stop")
}
func (c *countingVisitor) VisitSetEnvVars(a *manifest.SetEnvVars) error {
	c.seen = append(c.seen, a.Kind())
	return nil
}
func (c *countingVisitor) VisitGitignoreEntries(a *manifest.GitignoreEntries) error {
	c.seen = append(c.seen, a.Kind())
	return nil
}
func (c *countingVisitor) VisitPostInstallMessage(a *manifest.PostInstallMessage) error {
	c.seen = append(c.seen, a.Kind())
	return nil
}

func TestWalkStopsAtFirstError(t *testing.T) {
	m, err := manifest.Parse("acme/foo", manifest.Provenance{}, []byte(fullRecipe), nil)
	require.NoError(t, err)

	v := &countingVisitor{}
	require.Error(t, m.Walk(v))
	assert.Equal(t, []manifest.Kind{
		manifest.KindPostInstallMessage,
		manifest.KindWriteFiles,
		manifest.KindRegisterModules,
	}, v.seen)
}
