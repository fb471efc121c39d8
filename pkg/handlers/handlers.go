package handlers

import (
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/rs/zerolog"
)

// Context is what a handler needs to apply or undo one action
type Context struct {
	FS      types.FS
	Options config.Options

	// Package is the package the recipe belongs to
	Package string

	// Owned holds the project files the package's recipe wrote previously,
	// taken from its lock entry
	Owned map[string]bool

	Logger zerolog.Logger
}

// NewContext builds a handler context; owned are the files from the lock entry
func NewContext(fs types.FS, opts config.Options, pkg string, owned []string, logger zerolog.Logger) Context {
	set := make(map[string]bool, len(owned))
	for _, f := range owned {
		set[Clean(f)] = true
	}
	return Context{FS: fs, Options: opts, Package: pkg, Owned: set, Logger: logger}
}

// Expand resolves %NAME_DIR% placeholders in a target
func (c Context) Expand(target string) string {
	return c.Options.ExpandTargetDir(target)
}

// Owns reports whether path was written by this package's recipe before
func (c Context) Owns(path string) bool {
	return c.Owned[Clean(path)]
}

// OwnedUnder returns the owned files at or below dir, sorted
func (c Context) OwnedUnder(dir string) []string {
	dir = Clean(dir)
	var files []string
	for f := range c.Owned {
		if f == dir || isWithin(dir, f) {
			files = append(files, f)
		}
	}
	sort.Strings(files)
	return files
}

// Result is what a handler reports back
type Result struct {
	// Files are the project-relative files the handler wrote and owns
	Files []string

	// Message is a short summary for logs
	Message string
}

// Clean normalizes a project-relative path
func Clean(path string) string {
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(path)))
}

func isWithin(dir, path string) bool {
	rel, err := filepath.Rel(filepath.FromSlash(dir), filepath.FromSlash(path))
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !filepath.IsAbs(rel) && !startsWithParent(rel)
}

func startsWithParent(rel string) bool {
	return len(rel) >= 3 && rel[:3] == ".."+string(filepath.Separator)
}
