// Package watcher reports changes to a set of files.
//
// Files are watched through their parent directories, so a file replaced
// by an editor's write-and-rename is still seen, and a file that does not
// exist yet is reported when it is created. Rapid changes to one file are
// coalesced into a single event by the debounced wrapper.
package watcher

import (
	"context"
	"errors"
	"time"
)

// Errors returned by watcher operations.
var (
	ErrWatcherClosed = errors.New("watcher is closed")
	ErrNotWatching   = errors.New("file is not being watched")
	ErrDirNotExist   = errors.New("parent directory does not exist")
)

// Op is a set of file operations.
type Op uint32

const (
	OpCreate Op = 1 << iota
	OpWrite
	OpRemove
	OpRename
	OpChmod
)

// String returns a readable form of the operation set.
func (op Op) String() string {
	names := []struct {
		op   Op
		name string
	}{
		{OpCreate, "CREATE"},
		{OpWrite, "WRITE"},
		{OpRemove, "REMOVE"},
		{OpRename, "RENAME"},
		{OpChmod, "CHMOD"},
	}

	s := ""
	for _, n := range names {
		if op.Has(n.op) {
			if s != "" {
				s += "|"
			}
			s += n.name
		}
	}
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

// Has reports whether op includes o.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event is a change to a watched file.
type Event struct {
	Path      string
	Op        Op
	Timestamp time.Time
}

// Watcher reports changes to individual files.
type Watcher interface {
	// Watch starts watching path. The parent directory must exist.
	Watch(path string) error

	// Unwatch stops watching path.
	Unwatch(path string) error

	// Events returns the event channel. It is closed by Close.
	Events() <-chan Event

	// Errors returns the error channel. It is closed by Close.
	Errors() <-chan error

	// WatchedPaths returns the watched files.
	WatchedPaths() []string

	// Close stops the watcher.
	Close() error
}

// Config holds watcher options.
type Config struct {
	// DebounceDelay coalesces events for one file that arrive within the
	// delay. Zero disables debouncing.
	DebounceDelay time.Duration

	// BufferSize is the capacity of the event and error channels.
	BufferSize int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 200 * time.Millisecond,
		BufferSize:    64,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithDebounceDelay sets the debounce delay.
func WithDebounceDelay(d time.Duration) Option {
	return func(c *Config) {
		if d >= 0 {
			c.DebounceDelay = d
		}
	}
}

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.BufferSize = size
		}
	}
}

// New creates an fsnotify watcher, wrapped in a debouncer unless the
// delay is zero.
func New(opts ...Option) (Watcher, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	w, err := NewFSNotifyWatcher(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.DebounceDelay == 0 {
		return w, nil
	}
	return NewDebouncedWatcher(w, cfg.DebounceDelay, cfg.BufferSize), nil
}

// Run delivers events from w to onEvent and errors to onError until ctx is
// done or w is closed. Handlers run on the calling goroutine, one at a
// time. onError may be nil.
func Run(ctx context.Context, w Watcher, onEvent func(Event), onError func(error)) error {
	events := w.Events()
	errs := w.Errors()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			onEvent(ev)

		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}
