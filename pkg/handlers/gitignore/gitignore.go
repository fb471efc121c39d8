// Package gitignore adds a package's ignore entries to the project's
// .gitignore as a marked block.
package gitignore

import (
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
)

// File is the ignore file, relative to the project root
const File = ".gitignore"

// Handler applies gitignore-entries actions
type Handler struct{}

// NewHandler creates a gitignore handler
func NewHandler() *Handler {
	return &Handler{}
}

// Name returns the handler name
func (h *Handler) Name() string {
	return "gitignore"
}

// Apply writes (or replaces) the package's block of ignore lines
func (h *Handler) Apply(ctx handlers.Context, a *manifest.GitignoreEntries) (handlers.Result, error) {
	var body strings.Builder
	for _, line := range a.Lines {
		body.WriteString(ctx.Expand(line) + "\n")
	}

	markers := handlers.BlockMarkers(ctx.Package)
	if err := handlers.UpdateText(ctx, File, func(content string) string {
		return markers.Upsert(content, body.String())
	}); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Message: "ignore entries added"}, nil
}

// Unapply removes the package's block
func (h *Handler) Unapply(ctx handlers.Context, a *manifest.GitignoreEntries) (handlers.Result, error) {
	if !filesystem.IsFile(ctx.FS, File) {
		return handlers.Result{Message: "no ignore file"}, nil
	}

	markers := handlers.BlockMarkers(ctx.Package)
	if err := handlers.UpdateText(ctx, File, func(content string) string {
		out, _ := markers.Remove(content)
		return out
	}); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Message: "ignore entries removed"}, nil
}
