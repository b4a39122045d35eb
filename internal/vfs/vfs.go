// Package vfs provides the file system abstraction used by the patch store,
// the document formats and the target resolvers.
//
// Two implementations are provided: OSFS, backed by the operating system,
// and MemFS, an in-memory tree used by tests and dry runs. Both follow the
// os package's error conventions, so callers can test failures with
// errors.Is(err, fs.ErrNotExist).
package vfs

import (
	"io/fs"
	"time"
)

// VFS is the set of file operations needed to read, back up and rewrite
// patch targets and patch documents.
type VFS interface {
	// ReadFile reads the entire file content.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating it if necessary.
	WriteFile(path string, data []byte, perm fs.FileMode) error

	// Stat returns file information.
	Stat(path string) (FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm fs.FileMode) error

	// Remove removes a file or empty directory.
	Remove(path string) error

	// Rename renames (moves) a file.
	Rename(oldPath, newPath string) error

	// Abs returns the absolute path.
	Abs(path string) (string, error)

	// Exists returns true if the path exists.
	Exists(path string) bool

	// IsRegular returns true if the path is a regular file.
	IsRegular(path string) bool

	// WalkDir walks the file tree rooted at root in lexical order.
	WalkDir(root string, fn WalkDirFunc) error
}

// FileInfo describes a file or directory.
type FileInfo struct {
	path    string
	name    string
	size    int64
	mode    fs.FileMode
	modTime time.Time
	isDir   bool
}

// NewFileInfo creates a FileInfo from the given parameters.
func NewFileInfo(path, name string, size int64, mode fs.FileMode, modTime time.Time, isDir bool) FileInfo {
	return FileInfo{
		path:    path,
		name:    name,
		size:    size,
		mode:    mode,
		modTime: modTime,
		isDir:   isDir,
	}
}

// Path returns the full path.
func (fi FileInfo) Path() string { return fi.path }

// Name returns the base name.
func (fi FileInfo) Name() string { return fi.name }

// Size returns the file size in bytes.
func (fi FileInfo) Size() int64 { return fi.size }

// Mode returns the file mode.
func (fi FileInfo) Mode() fs.FileMode { return fi.mode }

// Perm returns the permission bits, or 0o644 when none are recorded.
func (fi FileInfo) Perm() fs.FileMode {
	if p := fi.mode.Perm(); p != 0 {
		return p
	}
	return 0o644
}

// ModTime returns the modification time.
func (fi FileInfo) ModTime() time.Time { return fi.modTime }

// IsDir returns true if this is a directory.
func (fi FileInfo) IsDir() bool { return fi.isDir }

// WalkDirFunc is called by WalkDir for every visited path. The info is
// the zero FileInfo when err is non-nil.
type WalkDirFunc func(path string, info FileInfo, err error) error

// SkipDir is returned by a WalkDirFunc to skip the directory named in the call.
var SkipDir = fs.SkipDir
