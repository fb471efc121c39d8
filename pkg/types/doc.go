// Package types defines the records the host dependency manager hands to
// dorecipe: the operation kinds (install, update, uninstall) and the package
// metadata the engine needs to resolve or generate a recipe.
package types
