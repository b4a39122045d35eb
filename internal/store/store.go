// Package store reads patch targets as lines and writes them back.
//
// Targets keep their on-disk shape across a round trip: the encoding (BOM
// included), the line ending and the presence of a final newline are
// detected on read and reproduced on write. Binary files are refused.
package store

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/dshills/assetpatch/internal/logger"
	"github.com/dshills/assetpatch/internal/vfs"
)

// DefaultBackupSuffix is appended to a target path to form its backup path.
const DefaultBackupSuffix = ".bak"

// DefaultMaxFileSize is the largest target the store will read.
const DefaultMaxFileSize = 32 * 1024 * 1024

// FileStore reads and writes patch targets.
type FileStore interface {
	// ReadLines reads path as lines. A missing path fails with
	// ErrTargetNotFound.
	ReadLines(path string) (*Content, error)

	// WriteLines replaces the content of path.
	WriteLines(path string, content *Content) error

	// Backup copies path byte for byte to its backup path, replacing any
	// earlier backup, and returns the backup path.
	Backup(path string) (string, error)

	// Exists reports whether path is an existing regular file.
	Exists(path string) bool
}

// LineStore is a FileStore on top of a vfs.VFS.
type LineStore struct {
	fs           vfs.VFS
	backupSuffix string
	maxFileSize  int64
	log          *logger.Logger
}

// Option configures a LineStore.
type Option func(*LineStore)

// WithBackupSuffix sets the suffix of backup paths.
func WithBackupSuffix(suffix string) Option {
	return func(s *LineStore) {
		if suffix != "" {
			s.backupSuffix = suffix
		}
	}
}

// WithMaxFileSize sets the maximum target size. Zero means unlimited.
func WithMaxFileSize(size int64) Option {
	return func(s *LineStore) {
		if size >= 0 {
			s.maxFileSize = size
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *LineStore) {
		s.log = logger.OrNull(l).WithComponent("store")
	}
}

// New creates a LineStore on fsys.
func New(fsys vfs.VFS, opts ...Option) *LineStore {
	s := &LineStore{
		fs:           fsys,
		backupSuffix: DefaultBackupSuffix,
		maxFileSize:  DefaultMaxFileSize,
		log:          logger.NullLogger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FS returns the underlying file system.
func (s *LineStore) FS() vfs.VFS {
	return s.fs
}

// BackupPath returns the backup path for path.
func (s *LineStore) BackupPath(path string) string {
	return path + s.backupSuffix
}

// Exists reports whether path is an existing regular file.
func (s *LineStore) Exists(path string) bool {
	return s.fs.IsRegular(path)
}

// ReadRaw returns the bytes of path.
func (s *LineStore) ReadRaw(path string) ([]byte, error) {
	info, err := s.fs.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PathError{Op: "read", Path: path, Err: ErrTargetNotFound}
		}
		return nil, &PathError{Op: "read", Path: path, Err: err}
	}
	if info.IsDir() {
		return nil, &PathError{Op: "read", Path: path, Err: ErrIsDirectory}
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, &PathError{Op: "read", Path: path, Err: ErrFileTooLarge}
	}

	data, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, &PathError{Op: "read", Path: path, Err: err}
	}
	return data, nil
}

// ReadLines reads path as lines.
func (s *LineStore) ReadLines(path string) (*Content, error) {
	data, err := s.ReadRaw(path)
	if err != nil {
		return nil, err
	}

	enc := vfs.DetectEncoding(data)
	if enc != vfs.EncodingUTF16LE && enc != vfs.EncodingUTF16BE && vfs.IsBinary(data) {
		return nil, &PathError{Op: "read", Path: path, Err: ErrBinaryTarget}
	}

	content, err := Parse(data)
	if err != nil {
		return nil, &PathError{Op: "read", Path: path, Err: err}
	}

	s.log.Debug("read %s: %d lines, %s, %s", path, len(content.Lines), content.Encoding, content.Style())
	return content, nil
}

// WriteLines replaces the content of path atomically. An existing file
// keeps its permissions.
func (s *LineStore) WriteLines(path string, content *Content) error {
	data, err := content.Bytes()
	if err != nil {
		return &PathError{Op: "write", Path: path, Err: err}
	}

	if err := vfs.WriteFileAtomic(s.fs, path, data, s.perm(path)); err != nil {
		return &PathError{Op: "write", Path: path, Err: err}
	}

	s.log.Debug("wrote %s: %d lines", path, len(content.Lines))
	return nil
}

// Backup copies path to its backup path, replacing any earlier backup.
func (s *LineStore) Backup(path string) (string, error) {
	data, err := s.ReadRaw(path)
	if err != nil {
		return "", &PathError{Op: "backup", Path: path, Err: errors.Unwrap(err)}
	}

	backup := s.BackupPath(path)
	if err := vfs.WriteFileAtomic(s.fs, backup, data, s.perm(path)); err != nil {
		return "", &PathError{Op: "backup", Path: path, Err: fmt.Errorf("write %s: %w", backup, err)}
	}

	s.log.Debug("backed up %s to %s", path, backup)
	return backup, nil
}

func (s *LineStore) perm(path string) fs.FileMode {
	if info, err := s.fs.Stat(path); err == nil {
		return info.Perm()
	}
	return 0o644
}
