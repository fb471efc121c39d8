package testutil

import (
	"context"

	"github.com/arthur-debert/dorecipe/pkg/catalog"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/stretchr/testify/mock"
)

// MockCatalog is a testify mock of catalog.Client
type MockCatalog struct {
	mock.Mock
}

// IsEnabled returns the configured answer
func (m *MockCatalog) IsEnabled() bool {
	return m.Called().Bool(0)
}

// Resolve returns the configured manifest and error
func (m *MockCatalog) Resolve(ctx context.Context, name, version string, kind types.OperationKind) (*manifest.Manifest, error) {
	args := m.Called(ctx, name, version, kind)
	man, _ := args.Get(0).(*manifest.Manifest)
	return man, args.Error(1)
}

// StaticCatalog serves fixed manifests by package name. Unknown packages
// have no recipe.
type StaticCatalog struct {
	Manifests map[string]*manifest.Manifest

	// Calls counts Resolve calls per package
	Calls map[string]int
}

// NewStaticCatalog creates an enabled catalog serving manifests
func NewStaticCatalog(manifests ...*manifest.Manifest) *StaticCatalog {
	c := &StaticCatalog{Manifests: map[string]*manifest.Manifest{}, Calls: map[string]int{}}
	for _, m := range manifests {
		c.Manifests[m.PackageName] = m
	}
	return c
}

// IsEnabled always returns true
func (c *StaticCatalog) IsEnabled() bool { return true }

// Resolve returns a copy of the package's manifest, if any
func (c *StaticCatalog) Resolve(_ context.Context, name, _ string, _ types.OperationKind) (*manifest.Manifest, error) {
	c.Calls[name]++
	m, ok := c.Manifests[name]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

var (
	_ catalog.Client = (*MockCatalog)(nil)
	_ catalog.Client = (*StaticCatalog)(nil)
)
