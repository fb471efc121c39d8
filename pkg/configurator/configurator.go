package configurator

import (
	"context"
	"sort"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/handlers/envvars"
	"github.com/arthur-debert/dorecipe/pkg/handlers/files"
	"github.com/arthur-debert/dorecipe/pkg/handlers/gitignore"
	"github.com/arthur-debert/dorecipe/pkg/handlers/modules"
	"github.com/arthur-debert/dorecipe/pkg/handlers/pkgfiles"
	"github.com/arthur-debert/dorecipe/pkg/lock"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
)

// ActionResult is the outcome of one action
type ActionResult struct {
	Kind    manifest.Kind
	Files   []string
	Message string
}

// Outcome is the outcome of applying or undoing a manifest
type Outcome struct {
	Results []ActionResult

	// Files are the project files the recipe owns after the run, sorted
	Files []string

	// Messages are the expanded post-install lines
	Messages []string
}

func (o *Outcome) add(kind manifest.Kind, r handlers.Result) {
	o.Results = append(o.Results, ActionResult{Kind: kind, Files: r.Files, Message: r.Message})
	o.Files = append(o.Files, r.Files...)
}

func (o *Outcome) normalize() {
	seen := make(map[string]bool, len(o.Files))
	out := o.Files[:0]
	for _, f := range o.Files {
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	o.Files = out
}

// Executor is the contract the engine uses
type Executor interface {
	Configure(ctx context.Context, m *manifest.Manifest, prev *lock.Entry) (Outcome, error)
	Unconfigure(ctx context.Context, pkg string, entry lock.Entry) (Outcome, error)
}

// Configurator applies manifests with the built-in handlers
type Configurator struct {
	fs   types.FS
	opts config.Options

	files     *files.Handler
	pkgfiles  *pkgfiles.Handler
	modules   *modules.Handler
	envvars   *envvars.Handler
	gitignore *gitignore.Handler
}

// New creates a configurator working on the project filesystem
func New(fs types.FS, opts config.Options) *Configurator {
	return &Configurator{
		fs:        fs,
		opts:      opts,
		files:     files.NewHandler(),
		pkgfiles:  pkgfiles.NewHandler(),
		modules:   modules.NewHandler(),
		envvars:   envvars.NewHandler(),
		gitignore: gitignore.NewHandler(),
	}
}

// Configure applies m in order. prev is the package's current lock entry,
// if any: files it owns may be overwritten, and whatever it configured that
// m no longer does is undone once every action of m succeeded.
func (c *Configurator) Configure(ctx context.Context, m *manifest.Manifest, prev *lock.Entry) (Outcome, error) {
	logger := logging.GetLogger("configurator").With().
		Str("package", m.PackageName).
		Str("recipe", m.Provenance.String()).
		Logger()
	done := logging.LogOperationStart(logger, "configure")
	defer done()

	var owned []string
	if prev != nil {
		owned = prev.Files
	}
	hctx := handlers.NewContext(c.fs, c.opts, m.PackageName, owned, logger)

	v := &applier{c: c, hctx: hctx}
	for _, a := range m.Actions {
		if err := ctx.Err(); err != nil {
			return v.outcome, actionError(err, m.PackageName, a.Kind())
		}
		if err := a.Accept(v); err != nil {
			return v.outcome, actionError(err, m.PackageName, a.Kind())
		}
	}

	if prev != nil {
		if err := c.reconcile(hctx, m, *prev, &v.outcome); err != nil {
			return v.outcome, err
		}
	}

	v.outcome.normalize()
	logger.Info().Int("actions", len(m.Actions)).Int("files", len(v.outcome.Files)).Msg("Recipe configured")
	return v.outcome, nil
}

// Unconfigure undoes a locked manifest, last action first. Targets that are
// already gone are skipped.
func (c *Configurator) Unconfigure(ctx context.Context, pkg string, entry lock.Entry) (Outcome, error) {
	logger := logging.GetLogger("configurator").With().
		Str("package", pkg).
		Str("recipe", entry.Provenance.String()).
		Logger()
	done := logging.LogOperationStart(logger, "unconfigure")
	defer done()

	hctx := handlers.NewContext(c.fs, c.opts, pkg, entry.Files, logger)
	v := &unapplier{c: c, hctx: hctx}
	for i := len(entry.Actions) - 1; i >= 0; i-- {
		a := entry.Actions[i]
		if err := ctx.Err(); err != nil {
			return v.outcome, actionError(err, pkg, a.Kind())
		}
		if err := a.Accept(v); err != nil {
			return v.outcome, actionError(err, pkg, a.Kind())
		}
	}

	// anything the recipe wrote outside of its current targets
	for _, f := range entry.Files {
		removed, err := filesystem.RemoveIfExists(c.fs, f)
		if err != nil {
			return v.outcome, errors.Wrapf(err, errors.ErrActionExecution, "%s: cannot remove %s", pkg, f).
				WithDetail("package", pkg).
				WithDetail("path", f)
		}
		if removed {
			filesystem.RemoveEmptyParents(c.fs, f)
			v.outcome.Files = append(v.outcome.Files, f)
		}
	}

	v.outcome.normalize()
	logger.Info().Int("files_removed", len(v.outcome.Files)).Msg("Recipe unconfigured")
	return v.outcome, nil
}

// reconcile undoes what prev configured and m does not anymore
func (c *Configurator) reconcile(hctx handlers.Context, m *manifest.Manifest, prev lock.Entry, outcome *Outcome) error {
	undo := &unapplier{c: c, hctx: hctx}

	for _, old := range prev.Actions {
		current, ok := m.Action(old.Kind())
		if !ok {
			if old.Kind() == manifest.KindWriteFiles || old.Kind() == manifest.KindCopyFromPackage {
				continue
			}
			if err := old.Accept(undo); err != nil {
				return actionError(err, m.PackageName, old.Kind())
			}
			continue
		}

		oldModules, isModules := old.(*manifest.RegisterModules)
		if !isModules {
			continue
		}
		keep := map[string]bool{}
		for _, class := range current.(*manifest.RegisterModules).Classes() {
			keep[class] = true
		}
		stale := &manifest.RegisterModules{}
		for _, mod := range oldModules.Modules {
			if !keep[mod.Class] {
				stale.Modules = append(stale.Modules, mod)
			}
		}
		if len(stale.Modules) > 0 {
			if err := stale.Accept(undo); err != nil {
				return actionError(err, m.PackageName, old.Kind())
			}
		}
	}

	written := make(map[string]bool, len(outcome.Files))
	for _, f := range outcome.Files {
		written[handlers.Clean(f)] = true
	}
	for _, f := range prev.Files {
		if written[handlers.Clean(f)] {
			continue
		}
		removed, err := filesystem.RemoveIfExists(c.fs, f)
		if err != nil {
			return errors.Wrapf(err, errors.ErrActionExecution, "%s: cannot remove stale file %s", m.PackageName, f).
				WithDetail("package", m.PackageName).
				WithDetail("path", f)
		}
		if removed {
			filesystem.RemoveEmptyParents(c.fs, f)
			hctx.Logger.Debug().Str("path", f).Msg("Stale file removed")
		}
	}
	return nil
}

func actionError(err error, pkg string, kind manifest.Kind) error {
	return errors.Wrapf(err, errors.ErrActionExecution, "%s: %s failed", pkg, kind).
		WithDetail("package", pkg).
		WithDetail("kind", string(kind))
}

var _ Executor = (*Configurator)(nil)
