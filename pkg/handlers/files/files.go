// Package files writes recipe-provided files into the project.
package files

import (
	"fmt"
	"io/fs"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
)

const (
	fileMode       fs.FileMode = 0644
	executableMode fs.FileMode = 0755
)

// Handler applies write-files actions
type Handler struct{}

// NewHandler creates a files handler
func NewHandler() *Handler {
	return &Handler{}
}

// Name returns the handler name
func (h *Handler) Name() string {
	return "files"
}

// Apply writes each file. A file that already exists is kept as it is
// unless the package's previous recipe wrote it.
func (h *Handler) Apply(ctx handlers.Context, a *manifest.WriteFiles) (handlers.Result, error) {
	var result handlers.Result

	for _, f := range a.Files {
		target := handlers.Clean(ctx.Expand(f.Target))

		exists, err := filesystem.Exists(ctx.FS, target)
		if err != nil {
			return result, errors.Wrapf(err, errors.ErrFileAccess, "cannot check %s", target).
				WithDetail("path", target)
		}
		if exists && !ctx.Owns(target) {
			// left by an earlier attempt that failed before the lock entry was written
			if filesystem.SameContent(ctx.FS, target, []byte(f.Contents)) {
				ctx.Logger.Debug().Str("path", target).Msg("File already has the recipe content")
				result.Files = append(result.Files, target)
				continue
			}
			ctx.Logger.Debug().Str("path", target).Msg("File exists, keeping it")
			continue
		}

		mode := fileMode
		if f.Executable {
			mode = executableMode
		}
		if err := filesystem.WriteFileAtomic(ctx.FS, target, []byte(f.Contents), mode); err != nil {
			return result, errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", target).
				WithDetail("path", target)
		}
		ctx.Logger.Debug().Str("path", target).Bool("overwrite", exists).Msg("File written")
		result.Files = append(result.Files, target)
	}

	result.Message = pluralFiles(len(result.Files), "written")
	return result, nil
}

// Unapply removes the files of the action that the recipe wrote. Files that
// are already gone are skipped.
func (h *Handler) Unapply(ctx handlers.Context, a *manifest.WriteFiles) (handlers.Result, error) {
	var result handlers.Result

	for _, f := range a.Files {
		target := handlers.Clean(ctx.Expand(f.Target))
		if !ctx.Owns(target) {
			continue
		}
		removed, err := filesystem.RemoveIfExists(ctx.FS, target)
		if err != nil {
			return result, errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s", target).
				WithDetail("path", target)
		}
		if removed {
			filesystem.RemoveEmptyParents(ctx.FS, target)
			result.Files = append(result.Files, target)
		}
	}

	result.Message = pluralFiles(len(result.Files), "removed")
	return result, nil
}

func pluralFiles(n int, verb string) string {
	if n == 1 {
		return "1 file " + verb
	}
	return fmt.Sprintf("%d files %s", n, verb)
}
