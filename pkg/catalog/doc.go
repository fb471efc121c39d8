// Package catalog resolves recipes for packages.
//
// Client is the contract the engine consumes. Local serves recipes from
// directories on disk laid out as <repository>/<vendor>/<name>/<version>/
// with a manifest.yaml (or manifest.json) and any files the manifest
// references. The recipe chosen is the highest recipe version not above the
// installed package version. Repositories are searched in configuration
// order, so curated repositories should be listed before contrib ones.
package catalog
