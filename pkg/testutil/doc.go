// Package testutil provides project environments and fixture builders for
// testing dorecipe components.
//
// Key components:
//   - TestEnvironment: a project tree with options, lock store and configurator
//   - FileTree: declarative file setup
//   - PackageBuilder: host packages and operations
//   - MockCatalog / StaticCatalog: catalog clients
//
// Usage guidelines:
//   - Most tests should use EnvMemoryOnly for speed and isolation
//   - All test data should be defined inline, not in external files
//   - Each test should be completely isolated with no shared state
package testutil
