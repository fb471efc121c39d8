// Package modules maintains the project's module registry.
//
// The registry lives in <config-dir>/bundles.toml as an ordered list of
// [[bundle]] tables, each naming a class and the environments it is enabled
// in. Applying adds classes that are not registered yet and leaves existing
// registrations (and their environments) alone; undoing removes the classes
// the recipe registered.
package modules

import (
	"bytes"
	"os"
	"path"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/handlers"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// RegistryFile is the registry file name inside the config dir
const RegistryFile = "bundles.toml"

// Registration is one registry entry
type Registration struct {
	Class string   `toml:"class"`
	Envs  []string `toml:"envs"`
}

// Registry is the decoded registry file
type Registry struct {
	Bundles []Registration `toml:"bundle"`
}

// Has reports whether class is registered
func (r *Registry) Has(class string) bool {
	return r.index(class) >= 0
}

func (r *Registry) index(class string) int {
	for i, b := range r.Bundles {
		if b.Class == class {
			return i
		}
	}
	return -1
}

// Handler applies register-modules actions
type Handler struct{}

// NewHandler creates a modules handler
func NewHandler() *Handler {
	return &Handler{}
}

// Name returns the handler name
func (h *Handler) Name() string {
	return "modules"
}

// RegistryPath returns the project-relative registry path for a config dir
func RegistryPath(configDir string) string {
	return handlers.Clean(path.Join(configDir, RegistryFile))
}

// Load reads the registry; a missing file is an empty registry
func Load(fs types.FS, file string) (*Registry, error) {
	data, err := afero.ReadFile(fs, file)
	if err != nil {
		if os.IsNotExist(err) {
			return &Registry{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", file).
			WithDetail("path", file)
	}

	var reg Registry
	if err := toml.Unmarshal(data, &reg); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot parse %s", file).
			WithDetail("path", file)
	}
	return &reg, nil
}

func save(fs types.FS, file string, reg *Registry) error {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.SetArraysMultiline(false)
	if err := enc.Encode(reg); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "cannot encode %s", file)
	}
	if err := filesystem.WriteFileAtomic(fs, file, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", file).
			WithDetail("path", file)
	}
	return nil
}

// Apply registers the action's classes that are not registered yet
func (h *Handler) Apply(ctx handlers.Context, a *manifest.RegisterModules) (handlers.Result, error) {
	file := RegistryPath(ctx.Options.ConfigDir)
	reg, err := Load(ctx.FS, file)
	if err != nil {
		return handlers.Result{}, err
	}

	added := 0
	for _, m := range a.Modules {
		if reg.Has(m.Class) {
			ctx.Logger.Debug().Str("class", m.Class).Msg("Module already registered")
			continue
		}
		reg.Bundles = append(reg.Bundles, Registration{Class: m.Class, Envs: append([]string(nil), m.Envs...)})
		added++
	}

	if added == 0 {
		return handlers.Result{Message: "modules already registered"}, nil
	}
	if err := save(ctx.FS, file, reg); err != nil {
		return handlers.Result{}, err
	}
	ctx.Logger.Debug().Str("path", file).Int("added", added).Msg("Modules registered")
	return handlers.Result{Message: "modules registered"}, nil
}

// Unapply removes the action's classes from the registry. The registry
// records no owner, so a class another package registered first goes too.
func (h *Handler) Unapply(ctx handlers.Context, a *manifest.RegisterModules) (handlers.Result, error) {
	file := RegistryPath(ctx.Options.ConfigDir)
	exists, err := filesystem.Exists(ctx.FS, file)
	if err != nil || !exists {
		return handlers.Result{Message: "no module registry"}, nil
	}

	reg, err := Load(ctx.FS, file)
	if err != nil {
		return handlers.Result{}, err
	}

	removed := 0
	for _, m := range a.Modules {
		if i := reg.index(m.Class); i >= 0 {
			reg.Bundles = append(reg.Bundles[:i], reg.Bundles[i+1:]...)
			removed++
		}
	}
	if removed == 0 {
		return handlers.Result{Message: "modules not registered"}, nil
	}
	if err := save(ctx.FS, file, reg); err != nil {
		return handlers.Result{}, err
	}
	return handlers.Result{Message: "modules unregistered"}, nil
}
