package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/config"
	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
	"golang.org/x/mod/semver"
)

var manifestFiles = []string{"manifest.yaml", "manifest.yml", "manifest.json"}

// Local serves recipes from on-disk repositories
type Local struct {
	fs      types.FS
	repos   []config.Repository
	enabled bool
}

// NewLocal builds a catalog over the repositories configured in opts.
// Relative repository paths are taken from the project root.
func NewLocal(fs types.FS, opts config.Options) *Local {
	repos := make([]config.Repository, 0, len(opts.Catalog.Repositories))
	for _, r := range opts.Catalog.Repositories {
		if !filepath.IsAbs(r.Path) && opts.RootDir != "" {
			r.Path = filepath.Join(opts.RootDir, r.Path)
		}
		repos = append(repos, r)
	}
	return &Local{
		fs:      fs,
		repos:   repos,
		enabled: opts.Catalog.Enabled && len(repos) > 0,
	}
}

// IsEnabled reports whether any repository is configured
func (l *Local) IsEnabled() bool { return l.enabled }

// Resolve finds the recipe of a package in the first repository that has one
func (l *Local) Resolve(ctx context.Context, name, version string, kind types.OperationKind) (*manifest.Manifest, error) {
	logger := logging.GetLogger("catalog").With().Str("package", name).Logger()

	for _, repo := range l.repos {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCatalogUnavailable, "catalog lookup for %s interrupted", name)
		}

		if _, err := l.fs.Stat(repo.Path); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCatalogUnavailable, "recipe repository %s is not readable", repo.Source).
				WithDetail("path", repo.Path)
		}

		pkgDir := filepath.Join(repo.Path, filepath.FromSlash(name))
		entries, err := afero.ReadDir(l.fs, pkgDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrCatalogUnavailable, "cannot list recipes of %s in %s", name, repo.Source)
		}

		var versions []string
		for _, e := range entries {
			if e.IsDir() {
				versions = append(versions, e.Name())
			}
		}
		recipeVersion, ok := SelectVersion(versions, version)
		if !ok {
			continue
		}

		m, err := l.load(repo, name, recipeVersion)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		m.Operation = kind
		logger.Debug().
			Str("source", repo.Source).
			Str("recipe_version", recipeVersion).
			Msg("Recipe resolved")
		return m, nil
	}

	logger.Debug().Msg("No recipe in catalog")
	return nil, nil
}

func (l *Local) load(repo config.Repository, name, recipeVersion string) (*manifest.Manifest, error) {
	dir := filepath.Join(repo.Path, filepath.FromSlash(name), recipeVersion)

	for _, file := range manifestFiles {
		path := filepath.Join(dir, file)
		data, err := afero.ReadFile(l.fs, path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, errors.Wrapf(err, errors.ErrCatalogUnavailable, "cannot read recipe %s", path)
		}

		prov := manifest.NewProvenance(name, recipeVersion, repo.Source, repo.Ref)
		m, err := manifest.Parse(name, prov, data, l.resolver(dir))
		if err != nil {
			return nil, err
		}
		m.Contrib = repo.Contrib
		return m, nil
	}
	return nil, nil
}

// resolver reads files referenced by a recipe; they must stay inside the
// recipe directory
func (l *Local) resolver(dir string) manifest.SourceResolver {
	return func(source string) ([]byte, error) {
		clean := filepath.Clean(filepath.FromSlash(source))
		if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
			return nil, errors.Newf(errors.ErrValidation, "recipe file %q is outside the recipe", source)
		}
		return afero.ReadFile(l.fs, filepath.Join(dir, clean))
	}
}

// SelectVersion picks the highest recipe version not above the package
// version. When the package version is not a release version (a branch
// alias, say) the highest recipe version is used.
func SelectVersion(recipeVersions []string, packageVersion string) (string, bool) {
	type candidate struct {
		name      string
		canonical string
	}

	var candidates []candidate
	for _, v := range recipeVersions {
		if c := canonical(v); c != "" {
			candidates = append(candidates, candidate{name: v, canonical: c})
		}
	}
	if len(candidates) == 0 {
		return "", false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return semver.Compare(candidates[i].canonical, candidates[j].canonical) > 0
	})

	target := canonical(packageVersion)
	if target == "" {
		return candidates[0].name, true
	}
	for _, c := range candidates {
		if semver.Compare(c.canonical, target) <= 0 {
			return c.name, true
		}
	}
	return "", false
}

// canonical maps "1.2", "v1.2.3" and four-part versions like "1.2.3.0" to
// semver form, or "" when the version is not a release number
func canonical(v string) string {
	v = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(v), "v"), "V")
	if v == "" {
		return ""
	}

	pre := ""
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v, pre = v[:i], v[i:]
	}
	parts := strings.Split(v, ".")
	if len(parts) > 3 {
		parts = parts[:3]
	}
	return semver.Canonical("v" + strings.Join(parts, ".") + pre)
}

var _ Client = (*Local)(nil)
