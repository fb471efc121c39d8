// Package status reports the recipes recorded in a project's lock file
package status

import (
	"github.com/arthur-debert/dorecipe/pkg/commands/internal"
	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/lock"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/types"
)

// Options contains options for the status command
type Options struct {
	// Root is the project root; it is discovered when empty
	Root string

	// Packages limits the result; all packages when empty
	Packages []string

	FS     types.FS
	Config *config.Options
}

// Recipe is the status of one applied recipe
type Recipe struct {
	Package string   `json:"package"`
	Version string   `json:"version"`
	Origin  string   `json:"origin"`
	Actions []string `json:"actions"`
	Files   []string `json:"files"`
}

// Result lists applied recipes sorted by package, plus requested packages
// that have none
type Result struct {
	LockFile   string   `json:"lock_file"`
	Recipes    []Recipe `json:"recipes"`
	NotApplied []string `json:"not_applied,omitempty"`
}

// Run reads the lock file of the project
func Run(opts Options) (*Result, error) {
	project, err := internal.OpenProject(opts.Root, opts.FS, opts.Config, nil)
	if err != nil {
		return nil, err
	}

	store, err := lock.Load(project.FS, project.Options.LockFile)
	if err != nil {
		return nil, err
	}

	names := opts.Packages
	if len(names) == 0 {
		names = store.Names()
	}

	result := &Result{LockFile: project.Options.LockFile, Recipes: []Recipe{}}
	for _, name := range names {
		entry, ok := store.Get(name)
		if !ok {
			result.NotApplied = append(result.NotApplied, name)
			continue
		}
		recipe := Recipe{
			Package: name,
			Version: entry.Version,
			Origin:  entry.Provenance.String(),
			Actions: []string{},
			Files:   append([]string{}, entry.Files...),
		}
		for _, a := range entry.Actions {
			recipe.Actions = append(recipe.Actions, string(a.Kind()))
		}
		result.Recipes = append(result.Recipes, recipe)
	}

	logger := logging.GetLogger("commands.status")
	logger.Debug().
		Int("recipes", len(result.Recipes)).
		Msg("Status collected")
	return result, nil
}
