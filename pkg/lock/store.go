package lock

import (
	"bytes"
	"encoding/json"
	"os"
	"sort"

	"github.com/arthur-debert/dorecipe/pkg/errors"
	"github.com/arthur-debert/dorecipe/pkg/filesystem"
	"github.com/arthur-debert/dorecipe/pkg/logging"
	"github.com/arthur-debert/dorecipe/pkg/manifest"
	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
)

// Entry is the lock record of one package
type Entry struct {
	Version    string
	Provenance manifest.Provenance

	// Actions are the actions as applied, used to undo them
	Actions []manifest.Action

	// Files are the project-relative files written by the recipe
	Files []string
}

// Manifest rebuilds the applied manifest of pkg from the entry
func (e Entry) Manifest(pkg string) *manifest.Manifest {
	return manifest.New(pkg, e.Provenance, e.Actions...)
}

// Store is the lock store contract used by the engine
type Store interface {
	Get(pkg string) (Entry, bool)
	Put(pkg string, entry Entry)
	Remove(pkg string)
	Has(pkg string) bool
	Names() []string
	Persist() error
}

// FileStore is a Store backed by a JSON file in the project
type FileStore struct {
	fs      types.FS
	path    string
	entries map[string]Entry
	dirty   bool
}

type fileRecipe struct {
	Origin  string                   `json:"origin"`
	Actions []manifest.EncodedAction `json:"actions"`
}

type fileEntry struct {
	Version string     `json:"version"`
	Recipe  fileRecipe `json:"recipe"`
	Files   []string   `json:"files"`
}

// Load reads the lock file at path. A missing file yields an empty store;
// an unreadable or malformed one is a STORE_CORRUPTION error.
func Load(fs types.FS, path string) (*FileStore, error) {
	logger := logging.GetLogger("lock")
	s := &FileStore{fs: fs, path: path, entries: map[string]Entry{}}

	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug().Str("path", path).Msg("No lock file, starting empty")
			return s, nil
		}
		return nil, errors.Wrapf(err, errors.ErrStoreCorruption, "cannot read lock file %s", path).
			WithDetail("path", path)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Newf(errors.ErrStoreCorruption, "lock file %s is empty", path).
			WithDetail("path", path)
	}

	var raw map[string]*fileEntry
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, errors.ErrStoreCorruption, "cannot parse lock file %s", path).
			WithDetail("path", path)
	}

	for pkg, fe := range raw {
		if fe == nil {
			return nil, errors.Newf(errors.ErrStoreCorruption, "lock file %s: entry for %s is null", path, pkg).
				WithDetail("path", path).
				WithDetail("package", pkg)
		}
		actions, err := manifest.DecodeEncodedActions(fe.Recipe.Actions)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrStoreCorruption, "lock file %s: entry for %s", path, pkg).
				WithDetail("path", path).
				WithDetail("package", pkg)
		}
		s.entries[pkg] = Entry{
			Version:    fe.Version,
			Provenance: manifest.ParseProvenance(fe.Recipe.Origin),
			Actions:    actions,
			Files:      fe.Files,
		}
	}

	logger.Debug().Str("path", path).Int("entries", len(s.entries)).Msg("Lock file loaded")
	return s, nil
}

// Path returns the project-relative lock file path
func (s *FileStore) Path() string { return s.path }

// Get returns the entry of pkg
func (s *FileStore) Get(pkg string) (Entry, bool) {
	e, ok := s.entries[pkg]
	return e, ok
}

// Put creates or replaces the entry of pkg
func (s *FileStore) Put(pkg string, entry Entry) {
	s.entries[pkg] = entry
	s.dirty = true
}

// Remove deletes the entry of pkg, if any
func (s *FileStore) Remove(pkg string) {
	if _, ok := s.entries[pkg]; !ok {
		return
	}
	delete(s.entries, pkg)
	s.dirty = true
}

// Has reports whether pkg has an entry
func (s *FileStore) Has(pkg string) bool {
	_, ok := s.entries[pkg]
	return ok
}

// Names returns the package names with an entry, sorted
func (s *FileStore) Names() []string {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Persist writes every entry to the lock file atomically. Nothing is written
// when the store has not changed since it was loaded.
func (s *FileStore) Persist() error {
	if !s.dirty {
		return nil
	}

	data, err := s.encode()
	if err != nil {
		return err
	}
	if err := filesystem.WriteFileAtomic(s.fs, s.path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write lock file %s", s.path).
			WithDetail("path", s.path)
	}

	s.dirty = false
	logger := logging.GetLogger("lock")
	logger.Debug().
		Str("path", s.path).
		Int("entries", len(s.entries)).
		Msg("Lock file persisted")
	return nil
}

func (s *FileStore) encode() ([]byte, error) {
	raw := make(map[string]fileEntry, len(s.entries))
	for pkg, e := range s.entries {
		actions, err := manifest.EncodeActions(e.Actions)
		if err != nil {
			return nil, err
		}
		if actions == nil {
			actions = []manifest.EncodedAction{}
		}
		files := e.Files
		if files == nil {
			files = []string{}
		}
		raw[pkg] = fileEntry{
			Version: e.Version,
			Recipe:  fileRecipe{Origin: e.Provenance.String(), Actions: actions},
			Files:   files,
		}
	}

	// encoding/json writes map keys sorted
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(raw); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode lock file")
	}
	return buf.Bytes(), nil
}

var _ Store = (*FileStore)(nil)
