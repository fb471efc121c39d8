// Package feed reads the host's operation feed: the list of packages the
// dependency manager installed, updated or removed in this run.
//
// A feed is a YAML or JSON list of records:
//
//	- operation: install
//	  name: acme/foo-bundle
//	  version: 1.2.0.0
//	  pretty_version: v1.2.0
//	  dev: false
//	  type: symfony-bundle
//	  autoload:
//	    psr-4:
//	      Acme\FooBundle\: src/
//	  extra:
//	    symfony:
//	      bundles: {}
//
// Autoload paths may be a single string or a list.
package feed

import (
	"encoding/json"
	"os"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Record is one operation as written in the feed
type Record struct {
	Operation     string                           `yaml:"operation"`
	Name          string                           `yaml:"name"`
	Version       string                           `yaml:"version"`
	PrettyVersion string                           `yaml:"pretty_version"`
	Dev           bool                             `yaml:"dev"`
	Type          string                           `yaml:"type"`
	Autoload      map[string]map[string]StringList `yaml:"autoload"`
	Extra         yaml.Node                        `yaml:"extra"`
}

// StringList accepts a scalar or a sequence of scalars
type StringList []string

// UnmarshalYAML implements yaml.Unmarshaler
func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*l = StringList{node.Value}
		return nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return err
	}
	*l = list
	return nil
}

// ToOperation converts the record into a host operation
func (r Record) ToOperation() (types.Operation, error) {
	if r.Name == "" {
		return types.Operation{}, errors.New(errors.ErrInvalidInput, "feed record has no package name")
	}
	kind, err := types.ParseOperationKind(r.Operation)
	if err != nil {
		return types.Operation{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid operation for %s", r.Name).
			WithDetail("package", r.Name)
	}

	pkg := types.Package{
		Name:          r.Name,
		Version:       r.Version,
		PrettyVersion: r.PrettyVersion,
		Type:          r.Type,
		Dev:           r.Dev,
	}
	if !r.Extra.IsZero() {
		if err := r.Extra.Decode(&pkg.Extra); err != nil {
			return types.Operation{}, errors.Wrapf(err, errors.ErrInvalidInput, "invalid extra for %s", r.Name).
				WithDetail("package", r.Name)
		}
		extra := r.Extra
		pkg.ExtraNode = &extra
	}
	if pkg.Version == "" {
		pkg.Version = pkg.PrettyVersion
	}
	if len(r.Autoload) > 0 {
		pkg.Autoload = types.Autoload{}
		for standard, entries := range r.Autoload {
			pkg.Autoload[standard] = map[string][]string{}
			for namespace, dirs := range entries {
				pkg.Autoload[standard][namespace] = []string(dirs)
			}
		}
	}
	return types.Operation{Kind: kind, Package: pkg}, nil
}

// Parse decodes a YAML or JSON feed
func Parse(data []byte) ([]types.Operation, error) {
	var records []Record
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "malformed operation feed")
	}

	ops := make([]types.Operation, 0, len(records))
	for i, r := range records {
		op, err := r.ToOperation()
		if err != nil {
			if re, ok := err.(*errors.RecipeError); ok {
				return nil, re.WithDetail("index", i)
			}
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Load reads and parses the feed file at path
func Load(fs afero.Fs, path string) ([]types.Operation, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read operation feed %s", path).
			WithDetail("path", path)
	}
	ops, err := Parse(data)
	if err != nil {
		return nil, err
	}
	logger := logging.GetLogger("feed")
	logger.Debug().Str("path", path).Int("operations", len(ops)).Msg("Feed loaded")
	return ops, nil
}

type rootPackage struct {
	Extra map[string]interface{} `json:"extra"`
}

// LoadRootExtra returns the extra mapping of the root package manifest at
// path. A missing file has no extra.
func LoadRootExtra(fs afero.Fs, path string) (map[string]interface{}, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read %s", path).
			WithDetail("path", path)
	}
	var root rootPackage
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot parse %s", path).
			WithDetail("path", path)
	}
	return root.Extra, nil
}
