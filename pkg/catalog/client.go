package catalog

import (
	"context"
	"time"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/cenkalti/backoff/v5"
)

// ErrUnavailable matches every error reporting that the catalog could not
// be reached or read
var ErrUnavailable = errors.New(errors.ErrCatalogUnavailable, "recipe catalog unavailable")

// Client resolves a package to at most one recipe
type Client interface {
	// IsEnabled gates catalog lookups; it is checked once per run
	IsEnabled() bool

	// Resolve returns the recipe for the package, or nil when there is none.
	// Errors matching ErrUnavailable mean the catalog could not answer.
	Resolve(ctx context.Context, name, version string, kind types.OperationKind) (*manifest.Manifest, error)
}

type disabled struct{}

// Disabled returns a client that never resolves anything
func Disabled() Client { return disabled{} }

func (disabled) IsEnabled() bool { return false }

func (disabled) Resolve(context.Context, string, string, types.OperationKind) (*manifest.Manifest, error) {
	return nil, nil
}

// RetryPolicy bounds how often an unavailable catalog is retried
type RetryPolicy struct {
	MaxTries uint
	Interval time.Duration
}

// DefaultRetryPolicy is used by the CLI
var DefaultRetryPolicy = RetryPolicy{MaxTries: 3, Interval: 200 * time.Millisecond}

type retrying struct {
	next   Client
	policy RetryPolicy
}

// WithRetry wraps a client so that unavailable errors are retried with
// exponential backoff. Any other error is returned at once.
func WithRetry(c Client, policy RetryPolicy) Client {
	if policy.MaxTries == 0 {
		policy.MaxTries = 1
	}
	return &retrying{next: c, policy: policy}
}

func (r *retrying) IsEnabled() bool { return r.next.IsEnabled() }

func (r *retrying) Resolve(ctx context.Context, name, version string, kind types.OperationKind) (*manifest.Manifest, error) {
	logger := logging.GetLogger("catalog")
	attempt := 0

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.policy.Interval

	m, err := backoff.Retry(ctx, func() (*manifest.Manifest, error) {
		attempt++
		m, err := r.next.Resolve(ctx, name, version, kind)
		if err == nil {
			return m, nil
		}
		if !errors.IsErrorCode(err, errors.ErrCatalogUnavailable) {
			return nil, backoff.Permanent(err)
		}
		logger.Debug().
			Str("package", name).
			Int("attempt", attempt).
			Err(err).
			Msg("Catalog unavailable")
		return nil, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(r.policy.MaxTries))
	if err != nil {
		if errors.IsErrorCode(err, errors.ErrCatalogUnavailable) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, errors.Wrapf(err, errors.ErrCatalogUnavailable, "catalog lookup for %s interrupted", name)
		}
		return nil, err
	}
	return m, nil
}
