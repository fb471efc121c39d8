// Package pkgfiles copies files shipped inside a package into the project.
//
// Sources are relative to the package directory under the vendor dir and may
// name a single file or a directory, which is copied recursively. Targets
// accept %NAME_DIR% placeholders.
package pkgfiles

import (
	"path"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/spf13/afero"
)

// Handler applies copy-from-package actions
type Handler struct{}

// NewHandler creates a pkgfiles handler
func NewHandler() *Handler {
	return &Handler{}
}

// Name returns the handler name
func (h *Handler) Name() string {
	return "pkgfiles"
}

// Apply copies each entry. Existing files the package did not write before
// are kept.
func (h *Handler) Apply(ctx handlers.Context, a *manifest.CopyFromPackage) (handlers.Result, error) {
	var result handlers.Result
	pkgDir := path.Join(ctx.Options.VendorDir, ctx.Package)

	for _, entry := range a.Entries {
		source := handlers.Clean(path.Join(pkgDir, entry.Source))
		target := handlers.Clean(ctx.Expand(entry.Target))

		ok, err := filesystem.Exists(ctx.FS, source)
		if err != nil {
			return result, errors.Wrapf(err, errors.ErrFileAccess, "cannot check %s", source).
				WithDetail("path", source)
		}
		if !ok {
			return result, errors.Newf(errors.ErrFileAccess, "%s does not ship %s", ctx.Package, entry.Source).
				WithDetail("path", source)
		}

		var claimed []string
		written, err := filesystem.CopyTree(ctx.FS, source, target, func(dst string) bool {
			dst = handlers.Clean(dst)
			if !filesystem.IsFile(ctx.FS, dst) || ctx.Owns(dst) {
				return false
			}
			if sameAsSource(ctx, source, target, dst) {
				claimed = append(claimed, dst)
			}
			return true
		})
		if err != nil {
			return result, errors.Wrapf(err, errors.ErrFileWrite, "cannot copy %s to %s", entry.Source, target).
				WithDetail("path", target)
		}
		for _, f := range written {
			result.Files = append(result.Files, handlers.Clean(f))
		}
		result.Files = append(result.Files, claimed...)
		ctx.Logger.Debug().
			Str("source", source).
			Str("target", target).
			Int("files", len(written)).
			Msg("Copied from package")
	}

	result.Message = "copied from package"
	return result, nil
}

// sameAsSource reports whether the existing dst is an identical copy of its
// source, which is what an earlier failed attempt leaves behind
func sameAsSource(ctx handlers.Context, source, target, dst string) bool {
	src := source
	if rel, ok := strings.CutPrefix(dst, target+"/"); ok {
		src = path.Join(source, rel)
	}
	data, err := afero.ReadFile(ctx.FS, src)
	if err != nil {
		return false
	}
	return filesystem.SameContent(ctx.FS, dst, data)
}

// Unapply removes the files the recipe copied under each target
func (h *Handler) Unapply(ctx handlers.Context, a *manifest.CopyFromPackage) (handlers.Result, error) {
	var result handlers.Result

	for _, entry := range a.Entries {
		target := handlers.Clean(ctx.Expand(entry.Target))
		for _, f := range ctx.OwnedUnder(target) {
			removed, err := filesystem.RemoveIfExists(ctx.FS, f)
			if err != nil {
				return result, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", f).
					WithDetail("path", f)
			}
			if removed {
				filesystem.RemoveEmptyParents(ctx.FS, f)
				result.Files = append(result.Files, f)
			}
		}
	}

	result.Message = "removed copied files"
	return result, nil
}
