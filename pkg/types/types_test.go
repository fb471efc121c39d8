package types_test

import (
	"testing"

	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOperationKind(t *testing.T) {
	tests := []struct {
		input   string
		want    types.OperationKind
		wantErr bool
	}{
		{"install", types.OperationInstall, false},
		{" Update ", types.OperationUpdate, false},
		{"upgrade", types.OperationUpdate, false},
		{"uninstall", types.OperationUninstall, false},
		{"remove", types.OperationUninstall, false},
		{"purge", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := types.ParseOperationKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPackageHelpers(t *testing.T) {
	pkg := types.Package{
		Name:    "acme/foo",
		Version: "1.0.0.0",
		Autoload: types.Autoload{
			"psr-4": {"Zed\\": {"src/"}, "Acme\\Foo\\": {""}},
		},
		Extra: map[string]interface{}{
			"symfony": map[string]interface{}{"bundles": map[string]interface{}{}},
		},
	}

	assert.Equal(t, "1.0.0.0", pkg.DisplayVersion())
	pkg.PrettyVersion = "1.0.0"
	assert.Equal(t, "1.0.0", pkg.DisplayVersion())

	assert.Equal(t, []string{"Acme\\Foo\\", "Zed\\"}, pkg.Autoload.Namespaces("psr-4"))
	assert.Empty(t, pkg.Autoload.Namespaces("psr-0"))

	section, ok := pkg.ExtraSection("symfony")
	assert.True(t, ok)
	assert.Contains(t, section, "bundles")

	_, ok = pkg.ExtraSection("missing")
	assert.False(t, ok)

	op := types.Operation{Kind: types.OperationInstall, Package: pkg}
	assert.Equal(t, "install acme/foo (1.0.0)", op.String())
	assert.True(t, types.OperationUninstall.IsRemoval())
	assert.False(t, types.OperationUpdate.IsRemoval())
}
