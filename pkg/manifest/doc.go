// Package manifest is the in-memory form of a recipe.
//
// A Manifest names the package it configures, carries the provenance string
// identifying where the recipe came from, and holds an ordered list of
// actions. Actions form a closed set: each kind is a concrete type and every
// consumer dispatches through ActionVisitor, so a new kind does not compile
// until every visitor handles it.
//
// Recipes are parsed from YAML or JSON through yaml.v3 nodes so that the
// declared order of actions, files, modules and variables is preserved.
// Anything that does not match its kind's shape is rejected with a
// VALIDATION error before a manifest is returned.
package manifest
