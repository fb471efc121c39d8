package handlers

import (
	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/spf13/afero"
)

// UpdateText rewrites a text file through edit. A missing file is edited as
// empty and created; the file is not touched when edit changes nothing.
func UpdateText(ctx Context, file string, edit func(string) string) error {
	exists := filesystem.IsFile(ctx.FS, file)

	var content string
	if exists {
		data, err := afero.ReadFile(ctx.FS, file)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", file).
				WithDetail("path", file)
		}
		content = string(data)
	}

	updated := edit(content)
	if exists && updated == content {
		return nil
	}
	if err := filesystem.WriteFileAtomic(ctx.FS, file, []byte(updated), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", file).
			WithDetail("path", file)
	}
	ctx.Logger.Debug().Str("path", file).Msg("Updated")
	return nil
}
