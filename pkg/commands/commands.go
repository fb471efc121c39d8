// Package commands provides the command implementations behind the CLI.
//
// Each command is implemented in its own subdirectory:
//   - apply/  - runs an operation feed through the engine
//   - status/ - lists the recipes recorded in the lock file
//
// This file re-exports the command functions so the CLI only imports one
// package.
package commands

import (
	"context"

	"github.com/arthur-debert/dorecipe/pkg/commands/apply"
	"github.com/arthur-debert/dorecipe/pkg/commands/status"
	"github.com/arthur-debert/dorecipe/pkg/engine"
)

// ApplyOptions configures Apply
type ApplyOptions = apply.Options

// Apply runs the operations of a feed against a project
func Apply(ctx context.Context, opts ApplyOptions) (*engine.Report, error) {
	return apply.Run(ctx, opts)
}

// StatusOptions configures Status
type StatusOptions = status.Options

// StatusResult is what Status returns
type StatusResult = status.Result

// Status lists the recipes applied to a project
func Status(opts StatusOptions) (*StatusResult, error) {
	return status.Run(opts)
}
