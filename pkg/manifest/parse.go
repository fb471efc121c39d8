package manifest

import (
	"fmt"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"gopkg.in/yaml.v3"
)

// SourceResolver loads the contents of a recipe-relative file referenced by
// a write-files entry of the form {source: path}.
type SourceResolver func(source string) ([]byte, error)

// Document is the full recipe form: provenance, contrib flag and actions
type Document struct {
	Origin   string    `yaml:"origin"`
	Contrib  bool      `yaml:"is_contrib"`
	Manifest yaml.Node `yaml:"manifest"`
}

// Parse parses a manifest body (a mapping of action kind to payload) for
// pkg. YAML and JSON are both accepted.
func Parse(pkg string, provenance Provenance, data []byte, resolve SourceResolver) (*Manifest, error) {
	if pkg == "" {
		return nil, errors.New(errors.ErrValidation, "manifest package name must not be empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidation, "failed to parse recipe for %s", pkg).
			WithDetail("package", pkg)
	}

	actions, err := DecodeActions(&root, resolve)
	if err != nil {
		return nil, withPackage(err, pkg)
	}
	return New(pkg, provenance, actions...), nil
}

// ParseDocument parses a recipe document holding origin, is_contrib and
// manifest keys.
func ParseDocument(pkg string, data []byte, resolve SourceResolver) (*Manifest, error) {
	if pkg == "" {
		return nil, errors.New(errors.ErrValidation, "manifest package name must not be empty")
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, errors.ErrValidation, "failed to parse recipe document for %s", pkg).
			WithDetail("package", pkg)
	}

	actions, err := DecodeActions(&doc.Manifest, resolve)
	if err != nil {
		return nil, withPackage(err, pkg)
	}

	m := New(pkg, ParseProvenance(doc.Origin), actions...)
	m.Contrib = doc.Contrib
	return m, nil
}

// DecodeActions decodes an action mapping node. Unknown kinds, kinds given
// twice (including through an alias) and malformed payloads are rejected.
func DecodeActions(node *yaml.Node, resolve SourceResolver) ([]Action, error) {
	node = deref(node)
	if node == nil || node.Kind == 0 || isNull(node) {
		return nil, nil
	}

	pairs, err := mappingPairs(node, "recipe manifest")
	if err != nil {
		return nil, err
	}

	actions := make([]Action, 0, len(pairs))
	declared := make(map[Kind]string, len(pairs))
	for _, p := range pairs {
		kind, ok := LookupKind(p.key)
		if !ok {
			return nil, errors.Newf(errors.ErrValidation, "unknown action kind %q", p.key).
				WithDetail("kind", p.key)
		}
		if prev, dup := declared[kind]; dup {
			return nil, errors.Newf(errors.ErrValidation, "action %q declared twice (as %q and %q)", kind, prev, p.key).
				WithDetail("kind", string(kind))
		}
		declared[kind] = p.key

		action, err := decodeAction(kind, p.value, resolve)
		if err != nil {
			return nil, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

func decodeAction(kind Kind, node *yaml.Node, resolve SourceResolver) (Action, error) {
	switch kind {
	case KindWriteFiles:
		return decodeWriteFiles(node, resolve)
	case KindCopyFromPackage:
		return decodeCopyFromPackage(node)
	case KindRegisterModules:
		return decodeRegisterModules(node)
	case KindSetEnvVars:
		return decodeSetEnvVars(node)
	case KindGitignoreEntries:
		lines, err := stringList(node, kind)
		if err != nil {
			return nil, err
		}
		return &GitignoreEntries{Lines: lines}, nil
	case KindPostInstallMessage:
		lines, err := stringList(node, kind)
		if err != nil {
			return nil, err
		}
		return &PostInstallMessage{Lines: lines}, nil
	default:
		return nil, errors.Newf(errors.ErrInternal, "no decoder for action kind %q", kind)
	}
}

func decodeWriteFiles(node *yaml.Node, resolve SourceResolver) (Action, error) {
	pairs, err := mappingPairs(node, string(KindWriteFiles))
	if err != nil {
		return nil, err
	}

	files := make([]FileSpec, 0, len(pairs))
	for _, p := range pairs {
		if p.key == "" {
			return nil, invalid(KindWriteFiles, "file target must not be empty")
		}
		spec := FileSpec{Target: p.key}

		switch p.value.Kind {
		case yaml.ScalarNode:
			spec.Contents = p.value.Value
		case yaml.MappingNode:
			var entry struct {
				Contents   *string `yaml:"contents"`
				Source     string  `yaml:"source"`
				Executable bool    `yaml:"executable"`
			}
			if err := p.value.Decode(&entry); err != nil {
				return nil, invalid(KindWriteFiles, "file %q: %v", p.key, err)
			}
			spec.Executable = entry.Executable
			switch {
			case entry.Contents != nil && entry.Source != "":
				return nil, invalid(KindWriteFiles, "file %q sets both contents and source", p.key)
			case entry.Contents != nil:
				spec.Contents = *entry.Contents
			case entry.Source != "":
				if resolve == nil {
					return nil, invalid(KindWriteFiles, "file %q references source %q but the recipe has no files", p.key, entry.Source)
				}
				data, err := resolve(entry.Source)
				if err != nil {
					return nil, errors.Wrapf(err, errors.ErrValidation, "%s: file %q: cannot load source %q", KindWriteFiles, p.key, entry.Source)
				}
				spec.Contents = string(data)
			}
		default:
			return nil, invalid(KindWriteFiles, "file %q must be a string or a mapping", p.key)
		}
		files = append(files, spec)
	}
	return &WriteFiles{Files: files}, nil
}

func decodeCopyFromPackage(node *yaml.Node) (Action, error) {
	pairs, err := mappingPairs(node, string(KindCopyFromPackage))
	if err != nil {
		return nil, err
	}

	entries := make([]CopySpec, 0, len(pairs))
	for _, p := range pairs {
		if p.key == "" {
			return nil, invalid(KindCopyFromPackage, "source must not be empty")
		}
		if p.value.Kind != yaml.ScalarNode || p.value.Value == "" {
			return nil, invalid(KindCopyFromPackage, "target of %q must be a non-empty string", p.key)
		}
		entries = append(entries, CopySpec{Source: p.key, Target: p.value.Value})
	}
	return &CopyFromPackage{Entries: entries}, nil
}

// DecodeModules validates a module registration mapping held as a YAML node
// and keeps the declaration order. An empty mapping or list returns no modules.
func DecodeModules(node *yaml.Node) ([]Module, error) {
	a, err := decodeRegisterModules(deref(node))
	if err != nil {
		return nil, err
	}
	return a.(*RegisterModules).Modules, nil
}

func decodeRegisterModules(node *yaml.Node) (Action, error) {
	if node.Kind == yaml.SequenceNode && len(node.Content) == 0 {
		return &RegisterModules{}, nil
	}
	pairs, err := mappingPairs(node, string(KindRegisterModules))
	if err != nil {
		return nil, err
	}

	modules := make([]Module, 0, len(pairs))
	for _, p := range pairs {
		if p.key == "" {
			return nil, invalid(KindRegisterModules, "module class name must not be empty")
		}
		var value interface{}
		if err := p.value.Decode(&value); err != nil {
			return nil, invalid(KindRegisterModules, "environments of %q: %v", p.key, err)
		}
		envs, err := NormalizeEnvs(p.key, value)
		if err != nil {
			return nil, err
		}
		modules = append(modules, Module{Class: p.key, Envs: envs})
	}
	return &RegisterModules{Modules: modules}, nil
}

func decodeSetEnvVars(node *yaml.Node) (Action, error) {
	pairs, err := mappingPairs(node, string(KindSetEnvVars))
	if err != nil {
		return nil, err
	}

	vars := make([]EnvVar, 0, len(pairs))
	for _, p := range pairs {
		if p.key == "" {
			return nil, invalid(KindSetEnvVars, "variable name must not be empty")
		}
		if p.value.Kind != yaml.ScalarNode {
			return nil, invalid(KindSetEnvVars, "value of %q must be a scalar", p.key)
		}
		value := p.value.Value
		if isNull(p.value) {
			value = ""
		}
		if v := (EnvVar{Name: p.key}); !v.IsComment() {
			if err := checkGenerate(p.key, value); err != nil {
				return nil, err
			}
		}
		vars = append(vars, EnvVar{Name: p.key, Value: value})
	}
	return &SetEnvVars{Vars: vars}, nil
}

func stringList(node *yaml.Node, kind Kind) ([]string, error) {
	node = deref(node)
	if node.Kind != yaml.SequenceNode {
		return nil, invalid(kind, "payload must be a list of strings")
	}
	lines := make([]string, 0, len(node.Content))
	for i, item := range node.Content {
		item = deref(item)
		if item.Kind != yaml.ScalarNode {
			return nil, invalid(kind, "entry %d must be a string", i)
		}
		if isNull(item) {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, item.Value)
	}
	return lines, nil
}

type pair struct {
	key   string
	value *yaml.Node
}

// mappingPairs returns the key/value pairs of a mapping node in order.
// Duplicate keys are rejected.
func mappingPairs(node *yaml.Node, what string) ([]pair, error) {
	node = deref(node)
	if node.Kind != yaml.MappingNode {
		return nil, errors.Newf(errors.ErrValidation, "%s: payload must be a mapping", what)
	}

	pairs := make([]pair, 0, len(node.Content)/2)
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := deref(node.Content[i]), deref(node.Content[i+1])
		if k.Kind != yaml.ScalarNode {
			return nil, errors.Newf(errors.ErrValidation, "%s: keys must be strings (line %d)", what, k.Line)
		}
		if seen[k.Value] {
			return nil, errors.Newf(errors.ErrValidation, "%s: duplicate key %q (line %d)", what, k.Value, k.Line)
		}
		seen[k.Value] = true
		pairs = append(pairs, pair{key: k.Value, value: v})
	}
	return pairs, nil
}

func deref(node *yaml.Node) *yaml.Node {
	for node != nil && (node.Kind == yaml.DocumentNode || node.Kind == yaml.AliasNode) {
		if node.Kind == yaml.AliasNode {
			node = node.Alias
			continue
		}
		if len(node.Content) == 0 {
			return &yaml.Node{}
		}
		node = node.Content[0]
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}

func invalid(kind Kind, format string, args ...interface{}) error {
	return errors.Newf(errors.ErrValidation, "%s: %s", kind, fmt.Sprintf(format, args...)).
		WithDetail("kind", string(kind))
}

func withPackage(err error, pkg string) error {
	if re, ok := err.(*errors.RecipeError); ok {
		return re.WithDetail("package", pkg)
	}
	return err
}
