package filesystem

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dorecipe/pkg/types"
	"github.com/spf13/afero"
)

// MemoryRoot is the directory in-memory project filesystems are rooted at
const MemoryRoot = "/project"

// NewProject returns the OS filesystem rooted at the project directory
func NewProject(root string) types.FS {
	return afero.NewBasePathFs(afero.NewOsFs(), root)
}

// NewMemory returns an empty in-memory project filesystem
func NewMemory() types.FS {
	mem := afero.NewMemMapFs()
	_ = mem.MkdirAll(MemoryRoot, 0755)
	return afero.NewBasePathFs(mem, MemoryRoot)
}

// Exists reports whether name exists. Errors other than "not exist" are returned.
func Exists(fsys types.FS, name string) (bool, error) {
	_, err := fsys.Stat(name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsFile reports whether name exists and is a regular file
func IsFile(fsys types.FS, name string) bool {
	info, err := fsys.Stat(name)
	return err == nil && !info.IsDir()
}

// SameContent reports whether name is a regular file holding exactly data
func SameContent(fsys types.FS, name string, data []byte) bool {
	if !IsFile(fsys, name) {
		return false
	}
	current, err := afero.ReadFile(fsys, name)
	return err == nil && bytes.Equal(current, data)
}

// WriteFileAtomic writes data to a temporary sibling of name and renames it
// into place, so readers see either the old or the new content.
func WriteFileAtomic(fsys types.FS, name string, data []byte, perm fs.FileMode) error {
	dir := filepath.Dir(name)
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(fsys, dir, "."+filepath.Base(name)+".tmp-")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	cleanup := func() { _ = fsys.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("failed to sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	if err := fsys.Chmod(tmpName, perm); err != nil {
		cleanup()
		return fmt.Errorf("failed to chmod %s: %w", name, err)
	}
	if err := fsys.Rename(tmpName, name); err != nil {
		cleanup()
		return fmt.Errorf("failed to move %s into place: %w", name, err)
	}
	return nil
}

// RemoveIfExists removes a file, treating an already-missing file as success.
// It reports whether something was removed.
func RemoveIfExists(fsys types.FS, name string) (bool, error) {
	if err := fsys.Remove(name); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// RemoveEmptyParents walks up from name's directory removing empty
// directories until it reaches the project root or a non-empty directory.
func RemoveEmptyParents(fsys types.FS, name string) {
	dir := filepath.Dir(filepath.Clean(name))
	for dir != "." && dir != "/" && dir != "" {
		entries, err := afero.ReadDir(fsys, dir)
		if err != nil || len(entries) > 0 {
			return
		}
		if err := fsys.Remove(dir); err != nil {
			return
		}
		dir = filepath.Dir(dir)
	}
}

// CopyTree copies a file or a directory tree from src to dst within fsys.
// Destination files for which skip returns true are left untouched; a nil
// skip copies everything. It returns the destination paths of every file
// written.
func CopyTree(fsys types.FS, src, dst string, skip func(target string) bool) ([]string, error) {
	info, err := fsys.Stat(src)
	if err != nil {
		return nil, err
	}
	if skip == nil {
		skip = func(string) bool { return false }
	}

	if !info.IsDir() {
		if skip(dst) {
			return nil, nil
		}
		if err := copyFile(fsys, src, dst, info.Mode().Perm()); err != nil {
			return nil, err
		}
		return []string{dst}, nil
	}

	var written []string
	err = afero.Walk(fsys, src, func(path string, fi fs.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if fi.IsDir() {
			return fsys.MkdirAll(target, 0755)
		}
		if skip(target) {
			return nil
		}
		if err := copyFile(fsys, path, target, fi.Mode().Perm()); err != nil {
			return err
		}
		written = append(written, target)
		return nil
	})
	return written, err
}

func copyFile(fsys types.FS, src, dst string, perm fs.FileMode) error {
	data, err := afero.ReadFile(fsys, src)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", src, err)
	}
	if perm == 0 {
		perm = 0644
	}
	return WriteFileAtomic(fsys, dst, data, perm)
}
