package vfs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// OSFS is the VFS backed by the host file system.
//
// WriteFile syncs data to disk before returning and sets the file mode to
// exactly perm, so the temporary file renamed into place by
// WriteFileAtomic carries the target's permissions even when a stale
// temporary file was left behind.
type OSFS struct{}

// NewOSFS returns the host file system.
func NewOSFS() *OSFS {
	return &OSFS{}
}

var _ VFS = (*OSFS)(nil)

func (*OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// WriteFile creates or truncates path, writes data and syncs it.
func (*OSFS) WriteFile(path string, data []byte, perm fs.FileMode) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := f.Chmod(perm); err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

func (*OSFS) Stat(path string) (FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, err
	}
	return hostInfo(path, info), nil
}

func (*OSFS) MkdirAll(path string, perm fs.FileMode) error {
	return os.MkdirAll(path, perm)
}

func (*OSFS) Remove(path string) error {
	return os.Remove(path)
}

func (*OSFS) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (*OSFS) Abs(path string) (string, error) {
	return filepath.Abs(path)
}

// Exists reports false only when path is known to be missing. A path that
// cannot be inspected, for example behind a permission error, counts as
// present so callers never overwrite it by mistake.
func (*OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func (*OSFS) IsRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// WalkDir walks root in lexical order. Entries deleted while the walk is
// in progress are skipped instead of reported, since asset folders are
// often rewritten by the editor during a scan.
func (*OSFS) WalkDir(root string, fn WalkDirFunc) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err == nil {
			var info fs.FileInfo
			if info, err = d.Info(); err == nil {
				return fn(path, hostInfo(path, info), nil)
			}
		}
		if path != root && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fn(path, FileInfo{}, err)
	})
}

func hostInfo(path string, info fs.FileInfo) FileInfo {
	return NewFileInfo(path, info.Name(), info.Size(), info.Mode(), info.ModTime(), info.IsDir())
}
