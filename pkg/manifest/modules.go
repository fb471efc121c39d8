package manifest

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/arthur-debert/dorecipe/pkg/errors"
)

// NormalizeModules validates a module registration mapping held as generic
// values (as decoded from package metadata) and returns it as ordered
// modules. Classes are sorted since Go maps carry no order; use the YAML
// node path when declaration order must be kept.
//
// An empty mapping (or empty list) returns no modules and no error.
func NormalizeModules(value interface{}) ([]Module, error) {
	entries, ok := stringKeyed(value)
	if !ok {
		if isEmptyList(value) {
			return nil, nil
		}
		return nil, errors.Newf(errors.ErrValidation,
			"module registrations must be a mapping of class name to environments, got %s", describe(value))
	}

	classes := make([]string, 0, len(entries))
	for class := range entries {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	modules := make([]Module, 0, len(classes))
	for _, class := range classes {
		if class == "" {
			return nil, errors.New(errors.ErrValidation, "module class name must not be empty")
		}
		envs, err := NormalizeEnvs(class, entries[class])
		if err != nil {
			return nil, err
		}
		modules = append(modules, Module{Class: class, Envs: envs})
	}
	return modules, nil
}

// NormalizeEnvs validates the environment set of one class. Lists are taken
// as they are; mappings are accepted only when every key is a non-negative
// integer and are ordered by that index. Entries must be strings and
// duplicates are dropped.
func NormalizeEnvs(class string, value interface{}) ([]string, error) {
	var items []interface{}

	switch v := value.(type) {
	case []interface{}:
		items = v
	case []string:
		for _, s := range v {
			items = append(items, s)
		}
	default:
		indexed, ok := indexedValues(value)
		if !ok {
			return nil, errors.Newf(errors.ErrValidation,
				"environments of %q must be a list of environment names, got %s", class, describe(value)).
				WithDetail("class", class)
		}
		items = indexed
	}

	envs := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		env, ok := item.(string)
		if !ok {
			return nil, errors.Newf(errors.ErrValidation,
				"environment names of %q must be strings, got %s", class, describe(item)).
				WithDetail("class", class)
		}
		if seen[env] {
			continue
		}
		seen[env] = true
		envs = append(envs, env)
	}
	return envs, nil
}

// indexedValues turns a mapping with integer keys into a list ordered by key
func indexedValues(value interface{}) ([]interface{}, bool) {
	keyed := map[int]interface{}{}

	add := func(key interface{}, v interface{}) bool {
		var idx int
		switch k := key.(type) {
		case int:
			idx = k
		case int64:
			idx = int(k)
		case uint64:
			idx = int(k)
		case string:
			n, err := strconv.Atoi(k)
			if err != nil {
				return false
			}
			idx = n
		default:
			return false
		}
		if idx < 0 {
			return false
		}
		keyed[idx] = v
		return true
	}

	switch m := value.(type) {
	case map[string]interface{}:
		for k, v := range m {
			if !add(k, v) {
				return nil, false
			}
		}
	case map[interface{}]interface{}:
		for k, v := range m {
			if !add(k, v) {
				return nil, false
			}
		}
	case map[int]interface{}:
		for k, v := range m {
			if !add(k, v) {
				return nil, false
			}
		}
	default:
		return nil, false
	}

	indexes := make([]int, 0, len(keyed))
	for idx := range keyed {
		indexes = append(indexes, idx)
	}
	sort.Ints(indexes)

	items := make([]interface{}, 0, len(indexes))
	for _, idx := range indexes {
		items = append(items, keyed[idx])
	}
	return items, true
}

func stringKeyed(value interface{}) (map[string]interface{}, bool) {
	switch m := value.(type) {
	case map[string]interface{}:
		return m, true
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = v
		}
		return out, true
	default:
		return nil, false
	}
}

func isEmptyList(value interface{}) bool {
	list, ok := value.([]interface{})
	return ok && len(list) == 0
}

func describe(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case []interface{}, []string:
		return "a list"
	case map[string]interface{}, map[interface{}]interface{}, map[int]interface{}:
		return "a mapping"
	default:
		return fmt.Sprintf("%T", value)
	}
}
