package types

import (
	"sort"

	"gopkg.in/yaml.v3"
)

// Autoload maps an autoload standard ("psr-4", "psr-0") to namespace prefixes
// and the package-relative paths they are loaded from.
type Autoload map[string]map[string][]string

// Namespaces returns the namespaces declared for a standard, sorted
func (a Autoload) Namespaces(standard string) []string {
	entries := a[standard]
	namespaces := make([]string, 0, len(entries))
	for ns := range entries {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)
	return namespaces
}

// Package is the host's view of an installed (or removed) package
type Package struct {
	// Name is the vendor-qualified package name, e.g. "acme/foo-bundle"
	Name string

	// Version is the normalized version string
	Version string

	// PrettyVersion is the version as the user would write it
	PrettyVersion string

	// Type is the package type declared by the package ("library", "symfony-bundle", ...)
	Type string

	// Dev marks packages only required for development
	Dev bool

	// Autoload holds the declared namespace prefixes
	Autoload Autoload

	// Extra is the free-form metadata mapping of the package
	Extra map[string]interface{}

	// ExtraNode is Extra as read from the feed, with its key order.
	// Nil for packages built in code.
	ExtraNode *yaml.Node
}

// DisplayVersion prefers the pretty version and falls back to the normalized one
func (p Package) DisplayVersion() string {
	if p.PrettyVersion != "" {
		return p.PrettyVersion
	}
	return p.Version
}

// ExtraSection returns the extra sub-mapping stored under key, if any
func (p Package) ExtraSection(key string) (map[string]interface{}, bool) {
	if p.Extra == nil {
		return nil, false
	}
	section, ok := p.Extra[key].(map[string]interface{})
	return section, ok
}

// ExtraNodeAt returns the node stored under extra.<section>.<key>, or nil
// when the package carries no ordered extra or the path is missing
func (p Package) ExtraNodeAt(section, key string) *yaml.Node {
	node := p.ExtraNode
	for _, k := range []string{section, key} {
		node = mappingValue(node, k)
		if node == nil {
			return nil
		}
	}
	return node
}

func mappingValue(node *yaml.Node, key string) *yaml.Node {
	for node != nil && (node.Kind == yaml.DocumentNode || node.Kind == yaml.AliasNode) {
		if node.Kind == yaml.AliasNode {
			node = node.Alias
		} else if len(node.Content) > 0 {
			node = node.Content[0]
		} else {
			return nil
		}
	}
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
