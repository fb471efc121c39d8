// Package apply runs a host operation feed against a project
package apply

import (
	"context"

	"github.com/arthur-debert/dorecipe/pkg/catalog"
	"github.com/arthur-debert/dorecipe/pkg/commands/internal"
	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/configurator"
	"github.com/arthur-debert/dorecipe/pkg/engine"
	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/feed"
	"github.com/arthur-debert/dorecipe/pkg/lock"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
)

// Options contains options for the apply command
type Options struct {
	// Root is the project root; it is discovered when empty
	Root string

	// FeedPath is the operation feed file
	FeedPath string

	// Overrides are option values from the command line ("allow-contrib")
	Overrides map[string]interface{}

	// FS is the project filesystem; defaults to the OS filesystem at Root
	FS types.FS

	// FeedFS is where the feed is read from; defaults to the OS filesystem
	FeedFS afero.Fs

	// Config skips option loading when set
	Config *config.Options

	// Catalog defaults to the local catalog with retries
	Catalog catalog.Client
}

// Run loads the project and the feed, then processes every operation
func Run(ctx context.Context, opts Options) (*engine.Report, error) {
	logger := logging.GetLogger("commands.apply")

	if opts.FeedPath == "" {
		return nil, errors.New(errors.ErrInvalidInput, "an operation feed is required")
	}
	if opts.FeedFS == nil {
		opts.FeedFS = afero.NewOsFs()
	}

	project, err := internal.OpenProject(opts.Root, opts.FS, opts.Config, opts.Overrides)
	if err != nil {
		return nil, err
	}

	ops, err := feed.Load(opts.FeedFS, opts.FeedPath)
	if err != nil {
		return nil, err
	}

	store, err := lock.Load(project.FS, project.Options.LockFile)
	if err != nil {
		return nil, err
	}

	client := opts.Catalog
	if client == nil {
		client = catalog.WithRetry(catalog.NewLocal(afero.NewOsFs(), project.Options), catalog.DefaultRetryPolicy)
	}

	eng, err := engine.New(engine.Deps{
		Store:        store,
		Configurator: configurator.New(project.FS, project.Options),
		Catalog:      client,
		Options:      project.Options,
		FS:           project.FS,
	})
	if err != nil {
		return nil, err
	}

	for _, op := range ops {
		if err := eng.Record(op); err != nil {
			return nil, err
		}
	}

	logger.Info().
		Str("root", project.Options.RootDir).
		Int("operations", len(ops)).
		Msg("Applying operation feed")
	return eng.Run(ctx)
}
