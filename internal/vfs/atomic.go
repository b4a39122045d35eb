package vfs

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// tempSuffix is appended to a path to form the temporary file used by
// WriteFileAtomic.
const tempSuffix = ".tmp"

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place, so readers never observe a partially written file. Parent
// directories are created as needed.
func WriteFileAtomic(fsys VFS, path string, data []byte, perm fs.FileMode) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tempPath := path + tempSuffix
	if err := fsys.WriteFile(tempPath, data, perm); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := fsys.Rename(tempPath, path); err != nil {
		_ = fsys.Remove(tempPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
