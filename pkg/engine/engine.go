package engine

import (
	"context"

	"github.com/arthur-debert/dorecipe/pkg/bundles"
	"github.com/arthur-debert/dorecipe/pkg/catalog"
	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/configurator"
	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/lock"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// ContribSkipReason is reported for contrib recipes when allow-contrib is off
const ContribSkipReason = "recipe from contrib repository (allow-contrib is disabled)"

// State is the phase of the engine
type State int

const (
	StateIdle State = iota
	StateRecording
	StateApplying
	StateUnapplying
	StateReporting
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateApplying:
		return "applying"
	case StateUnapplying:
		return "unapplying"
	case StateReporting:
		return "reporting"
	default:
		return "unknown"
	}
}

// Deps are the collaborators of an Engine
type Deps struct {
	Store        lock.Store
	Configurator configurator.Executor
	Catalog      catalog.Client
	Options      config.Options
	FS           types.FS
}

// Engine processes batches of package operations
type Engine struct {
	store        lock.Store
	configurator configurator.Executor
	catalog      catalog.Client
	opts         config.Options
	fs           types.FS

	state   State
	records []types.Operation
	queue   *MessageQueue
}

// New creates an engine; every collaborator is required
func New(deps Deps) (*Engine, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New(errors.ErrInvalidInput, "engine requires a lock store")
	case deps.Configurator == nil:
		return nil, errors.New(errors.ErrInvalidInput, "engine requires a configurator")
	case deps.Catalog == nil:
		return nil, errors.New(errors.ErrInvalidInput, "engine requires a catalog client")
	case deps.FS == nil:
		return nil, errors.New(errors.ErrInvalidInput, "engine requires a filesystem")
	}
	return &Engine{
		store:        deps.Store,
		configurator: deps.Configurator,
		catalog:      deps.Catalog,
		opts:         deps.Options,
		fs:           deps.FS,
		queue:        NewMessageQueue(),
	}, nil
}

// State returns the current phase
func (e *Engine) State() State {
	return e.state
}

// Queue exposes the deferred message queue
func (e *Engine) Queue() *MessageQueue {
	return e.queue
}

// Records returns the recorded operations in processing order
func (e *Engine) Records() []types.Operation {
	out := make([]types.Operation, len(e.records))
	copy(out, e.records)
	return out
}

// Record notes an operation for the next Run. A later operation on an
// already recorded package replaces it but keeps its position.
func (e *Engine) Record(op types.Operation) error {
	if e.state != StateIdle && e.state != StateRecording {
		return errors.Newf(errors.ErrInvalidInput, "cannot record %s while %s", op.Package.Name, e.state)
	}
	if op.Package.Name == "" {
		return errors.New(errors.ErrInvalidInput, "operation has no package name")
	}
	if _, err := types.ParseOperationKind(string(op.Kind)); err != nil {
		return errors.Wrapf(err, errors.ErrInvalidInput, "invalid operation for %s", op.Package.Name).
			WithDetail("package", op.Package.Name)
	}

	e.state = StateRecording
	for i, r := range e.records {
		if r.Package.Name == op.Package.Name {
			e.records[i] = op
			return nil
		}
	}
	e.records = append(e.records, op)
	return nil
}

// Run processes the recorded operations. The report is returned even when
// packages failed; their errors come back aggregated. A fatal error returns
// a nil report.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	runID := uuid.NewString()
	logger := logging.GetLogger("engine").With().Str("run_id", runID).Logger()
	done := logging.LogOperationStart(logger, "run")
	defer done()
	defer e.reset()

	report := &Report{RunID: runID}
	var failures *multierror.Error

	var installs, uninstalls []types.Operation
	for _, op := range e.records {
		if op.Kind.IsRemoval() {
			uninstalls = append(uninstalls, op)
		} else {
			installs = append(installs, op)
		}
	}
	logger.Info().
		Int("installs", len(installs)).
		Int("uninstalls", len(uninstalls)).
		Msg("Processing recorded operations")

	catalogEnabled := e.catalog.IsEnabled()

	e.state = StateApplying
	for _, op := range installs {
		err := e.install(ctx, logger, op, catalogEnabled, report)
		if err == nil {
			continue
		}
		if e.fatal(err) {
			return nil, e.abort(logger, err)
		}
		report.failed(op.Package.Name, err)
		failures = multierror.Append(failures, err)
	}

	e.state = StateUnapplying
	for _, op := range uninstalls {
		err := e.uninstall(ctx, logger, op, report)
		if err == nil {
			continue
		}
		if e.fatal(err) {
			return nil, e.abort(logger, err)
		}
		report.failed(op.Package.Name, err)
		failures = multierror.Append(failures, err)
	}

	e.state = StateReporting
	if err := e.store.Persist(); err != nil {
		logger.Error().Err(err).Msg("Cannot persist lock store")
		return nil, err
	}

	if report.Recipes > 0 && e.queue.Len() > 0 {
		report.Messages = append(append([]string{}, Intro...), e.queue.Lines()...)
	}

	if err := failures.ErrorOrNil(); err != nil {
		logger.Warn().Int("failed", failures.Len()).Msg("Some packages failed")
		return report, err
	}
	logger.Info().Int("recipes", report.Recipes).Msg("Run completed")
	return report, nil
}

func (e *Engine) fatal(err error) bool {
	return errors.IsFatal(err) || (e.opts.Strict && errors.GetErrorCode(err) == errors.ErrValidation)
}

// abort persists what was already applied so the lock matches the tree,
// then returns err
func (e *Engine) abort(logger zerolog.Logger, err error) error {
	logger.Error().Err(err).Msg("Run aborted")
	if perr := e.store.Persist(); perr != nil {
		return multierror.Append(err, perr)
	}
	return err
}

func (e *Engine) reset() {
	e.records = nil
	e.queue.Reset()
	e.state = StateIdle
}

func (e *Engine) install(ctx context.Context, logger zerolog.Logger, op types.Operation, catalogEnabled bool, report *Report) error {
	name := op.Package.Name
	logger = logger.With().Str("package", name).Str("operation", string(op.Kind)).Logger()

	m, err := e.resolve(ctx, logger, op, catalogEnabled)
	if err != nil {
		return err
	}
	if m == nil {
		logger.Debug().Msg("No recipe")
		return nil
	}
	if m.IsContrib() && !e.opts.AllowContrib {
		logger.Info().Str("recipe", m.Provenance.String()).Msg("Contrib recipe skipped")
		report.skipped(name, ContribSkipReason)
		return nil
	}

	var prev *lock.Entry
	if entry, ok := e.store.Get(name); ok {
		if entry.Provenance.String() == m.Provenance.String() {
			logger.Debug().Str("recipe", m.Provenance.String()).Msg("Recipe already applied")
			return nil
		}
		prev = &entry
	}

	m.Operation = op.Kind
	outcome, err := e.configurator.Configure(ctx, m, prev)
	if err != nil {
		// the next run claims these back when their content is unchanged
		logger.Warn().Err(err).Strs("files", outcome.Files).Msg("Recipe failed after writing files")
		return err
	}

	e.store.Put(name, lock.Entry{
		Version:    op.Package.DisplayVersion(),
		Provenance: m.Provenance,
		Actions:    m.Actions,
		Files:      outcome.Files,
	})
	e.queue.Enqueue(outcome.Messages...)
	report.configured(m, op.Package.DisplayVersion())
	return nil
}

func (e *Engine) uninstall(ctx context.Context, logger zerolog.Logger, op types.Operation, report *Report) error {
	name := op.Package.Name
	logger = logger.With().Str("package", name).Str("operation", string(op.Kind)).Logger()

	entry, ok := e.store.Get(name)
	if !ok {
		logger.Debug().Msg("No applied recipe")
		return nil
	}
	if _, err := e.configurator.Unconfigure(ctx, name, entry); err != nil {
		return err
	}
	e.store.Remove(name)
	report.unconfigured(name, entry.Provenance, entry.Version)
	return nil
}

// resolve asks the catalog first and falls back to a manifest generated from
// the package metadata
func (e *Engine) resolve(ctx context.Context, logger zerolog.Logger, op types.Operation, catalogEnabled bool) (*manifest.Manifest, error) {
	pkg := op.Package
	if catalogEnabled {
		m, err := e.catalog.Resolve(ctx, pkg.Name, pkg.Version, op.Kind)
		switch {
		case err == nil && m != nil:
			return m, nil
		case err == nil:
		case errors.IsErrorCode(err, errors.ErrCatalogUnavailable) && !e.opts.CatalogAuthoritative:
			logger.Warn().Err(err).Msg("Catalog unavailable, falling back to package metadata")
		default:
			return nil, err
		}
	}
	return bundles.Generate(e.fs, pkg, op.Kind, e.opts)
}
