package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/dorecipe/pkg/errors"
)

const (
	// EnvProjectRoot overrides project root discovery
	EnvProjectRoot = "DORECIPE_ROOT"

	// RootPackageFile is the host's root package manifest
	RootPackageFile = "composer.json"

	// ProjectConfigFile is dorecipe's optional per-project configuration
	ProjectConfigFile = "dorecipe.toml"
)

// Paths resolves project locations
type Paths struct {
	root         string
	usedFallback bool
}

// New creates a Paths for root, discovering the root when it is empty
func New(root string) (*Paths, error) {
	p := &Paths{}

	if root == "" {
		found, usedFallback, err := findProjectRoot()
		if err != nil {
			return nil, err
		}
		root = found
		p.usedFallback = usedFallback
	}

	abs, err := filepath.Abs(expandHome(root))
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "failed to get absolute path for project root")
	}
	p.root = abs
	return p, nil
}

// Root returns the absolute project root
func (p *Paths) Root() string { return p.root }

// UsedFallback reports whether discovery fell back to the working directory
func (p *Paths) UsedFallback() bool { return p.usedFallback }

// RootPackagePath returns the absolute path of the root package manifest
func (p *Paths) RootPackagePath() string {
	return filepath.Join(p.root, RootPackageFile)
}

// ProjectConfigPath returns the absolute path of dorecipe.toml
func (p *Paths) ProjectConfigPath() string {
	return filepath.Join(p.root, ProjectConfigFile)
}

// Abs resolves a project-relative path
func (p *Paths) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.root, rel)
}

// Rel turns an absolute path inside the project into a project-relative one
func (p *Paths) Rel(abs string) (string, error) {
	rel, err := filepath.Rel(p.root, abs)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "path %s is not inside the project", abs)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrInvalidInput, "path %s is outside the project root %s", abs, p.root)
	}
	return rel, nil
}

func findProjectRoot() (string, bool, error) {
	if root := os.Getenv(EnvProjectRoot); root != "" {
		return root, false, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", false, errors.Wrapf(err, errors.ErrFileAccess, "failed to get current directory")
	}

	dir := cwd
	for {
		for _, marker := range []string{RootPackageFile, ProjectConfigFile} {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, false, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return cwd, true, nil
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
