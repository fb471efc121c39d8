// Package internal holds the project setup shared by the commands
package internal

import (
	"path/filepath"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/feed"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/paths"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
)

// Project is a resolved project: its filesystem and options
type Project struct {
	FS      types.FS
	Options config.Options
}

// OpenProject resolves options for the project at root. fs and opts are
// used as given when set, which is how tests inject an in-memory project.
func OpenProject(root string, fs types.FS, opts *config.Options, overrides map[string]interface{}) (*Project, error) {
	if opts != nil {
		if fs == nil {
			fs = filesystem.NewProject(opts.RootDir)
		}
		return &Project{FS: fs, Options: *opts}, nil
	}

	p, err := paths.New(root)
	if err != nil {
		return nil, err
	}
	logger := logging.WithFields(map[string]interface{}{
		"component": "commands",
		"root":      p.Root(),
	})
	if p.UsedFallback() {
		logger.Warn().Msg("No composer.json or dorecipe.toml found, using the current directory as project root")
	}

	extra, err := feed.LoadRootExtra(afero.NewOsFs(), p.RootPackagePath())
	if err != nil {
		return nil, err
	}
	loaded, err := config.Load(config.LoadParams{
		RootDir:   p.Root(),
		RootExtra: extra,
		Overrides: overrides,
	})
	if err != nil {
		return nil, err
	}
	if fs == nil {
		fs = filesystem.NewProject(filepath.Clean(p.Root()))
	}
	logger.Debug().
		Str("config", p.ProjectConfigPath()).
		Str("lock", p.Abs(loaded.LockFile)).
		Msg("Project resolved")
	return &Project{FS: fs, Options: loaded}, nil
}
