package config

import (
	"regexp"
	"strings"
)

// Repository is one on-disk recipe repository known to the local catalog
type Repository struct {
	Path    string `koanf:"path" validate:"required"`
	Source  string `koanf:"source" validate:"required"`
	Ref     string `koanf:"ref"`
	Contrib bool   `koanf:"contrib"`
}

// CatalogOptions configures the recipe catalog
type CatalogOptions struct {
	Enabled      bool         `koanf:"enabled"`
	Repositories []Repository `koanf:"repositories" validate:"dive"`
}

// Options is the configuration of one run. It is resolved once by Load and
// passed by value afterwards.
type Options struct {
	RootDir   string `koanf:"root-dir" validate:"required"`
	BinDir    string `koanf:"bin-dir" validate:"required"`
	ConfigDir string `koanf:"config-dir" validate:"required"`
	SrcDir    string `koanf:"src-dir" validate:"required"`
	VarDir    string `koanf:"var-dir" validate:"required"`
	PublicDir string `koanf:"public-dir" validate:"required"`
	VendorDir string `koanf:"vendor-dir" validate:"required"`

	// AllowContrib lets recipes from non-curated repositories be applied
	AllowContrib bool `koanf:"allow-contrib"`

	// Strict turns per-package validation failures into fatal errors
	Strict bool `koanf:"strict"`

	// CatalogAuthoritative makes an unreachable catalog a per-package failure
	// instead of falling back to auto-generated recipes
	CatalogAuthoritative bool `koanf:"catalog-authoritative"`

	// ExtraKey is the section of a package's extra metadata dorecipe reads
	ExtraKey string `koanf:"extra-key" validate:"required"`

	// LockFile is the project-relative path of the lock file
	LockFile string `koanf:"lock-file" validate:"required"`

	Catalog CatalogOptions `koanf:"catalog"`
}

// Get returns the value of a path option by its dashed name ("config-dir").
func (o Options) Get(name string) (string, bool) {
	switch name {
	case "root-dir":
		return o.RootDir, true
	case "bin-dir":
		return o.BinDir, true
	case "config-dir":
		return o.ConfigDir, true
	case "src-dir":
		return o.SrcDir, true
	case "var-dir":
		return o.VarDir, true
	case "public-dir":
		return o.PublicDir, true
	case "vendor-dir":
		return o.VendorDir, true
	default:
		return "", false
	}
}

var placeholderPattern = regexp.MustCompile(`%(.+?)%`)

// ExpandTargetDir replaces %NAME_DIR% placeholders with the matching
// option ("name-dir"), trailing slashes removed. Unknown placeholders are
// left as they are.
func (o Options) ExpandTargetDir(target string) string {
	return placeholderPattern.ReplaceAllStringFunc(target, func(match string) string {
		name := strings.ReplaceAll(strings.ToLower(match[1:len(match)-1]), "_", "-")
		value, ok := o.Get(name)
		if !ok {
			return match
		}
		return strings.TrimRight(value, "/")
	})
}
