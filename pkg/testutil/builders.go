package testutil

import (
	"github.com/arthur-debert/dorecipe/pkg/types"
)

// PackageBuilder builds host packages fluently
type PackageBuilder struct {
	pkg types.Package
}

// NewPackage starts a library package at version 1.0.0
func NewPackage(name string) *PackageBuilder {
	return &PackageBuilder{pkg: types.Package{
		Name:          name,
		Version:       "1.0.0.0",
		PrettyVersion: "1.0.0",
		Type:          "library",
	}}
}

// Version sets the pretty version; the normalized one gets a fourth part
func (b *PackageBuilder) Version(v string) *PackageBuilder {
	b.pkg.PrettyVersion = v
	b.pkg.Version = v + ".0"
	return b
}

// Type sets the package type
func (b *PackageBuilder) Type(t string) *PackageBuilder {
	b.pkg.Type = t
	return b
}

// Dev marks the package as a development requirement
func (b *PackageBuilder) Dev() *PackageBuilder {
	b.pkg.Dev = true
	return b
}

// Autoload declares a namespace prefix loaded from dir
func (b *PackageBuilder) Autoload(standard, namespace, dir string) *PackageBuilder {
	if b.pkg.Autoload == nil {
		b.pkg.Autoload = types.Autoload{}
	}
	if b.pkg.Autoload[standard] == nil {
		b.pkg.Autoload[standard] = map[string][]string{}
	}
	b.pkg.Autoload[standard][namespace] = append(b.pkg.Autoload[standard][namespace], dir)
	return b
}

// Extra sets key in the package's extra section under section
func (b *PackageBuilder) Extra(section, key string, value interface{}) *PackageBuilder {
	if b.pkg.Extra == nil {
		b.pkg.Extra = map[string]interface{}{}
	}
	s, ok := b.pkg.Extra[section].(map[string]interface{})
	if !ok {
		s = map[string]interface{}{}
		b.pkg.Extra[section] = s
	}
	s[key] = value
	return b
}

// Build returns the package
func (b *PackageBuilder) Build() types.Package {
	return b.pkg
}

// Install returns an install operation for the package
func (b *PackageBuilder) Install() types.Operation {
	return types.Operation{Kind: types.OperationInstall, Package: b.pkg}
}

// Update returns an update operation for the package
func (b *PackageBuilder) Update() types.Operation {
	return types.Operation{Kind: types.OperationUpdate, Package: b.pkg}
}

// Uninstall returns an uninstall operation for the package
func (b *PackageBuilder) Uninstall() types.Operation {
	return types.Operation{Kind: types.OperationUninstall, Package: b.pkg}
}
