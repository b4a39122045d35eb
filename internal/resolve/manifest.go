package resolve

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/dshills/assetpatch/internal/vfs"
)

// emptyManifest is the content of a manifest that does not exist yet.
const emptyManifest = `{"assets":{}}`

// ManifestResolver resolves asset ids through a JSON manifest of the form
//
//	{"assets": {"<id>": {"path": "Assets/foo.txt"}}}
//
// Relative paths are resolved against the directory holding the manifest.
// The manifest is read on first use and cached; Register updates the cache
// and rewrites the file.
type ManifestResolver struct {
	fs   vfs.VFS
	path string

	mu     sync.Mutex
	data   []byte
	loaded bool
}

// Entry is one manifest mapping.
type Entry struct {
	ID   string
	Path string
}

// NewManifestResolver creates a resolver backed by the manifest at path.
// The file need not exist until Register is called.
func NewManifestResolver(fsys vfs.VFS, path string) *ManifestResolver {
	return &ManifestResolver{fs: fsys, path: path}
}

// Path returns the manifest file path.
func (m *ManifestResolver) Path() string {
	return m.path
}

// Resolve returns the path registered for id.
func (m *ManifestResolver) Resolve(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(); err != nil {
		return "", false
	}

	res := gjson.GetBytes(m.data, "assets."+escapeKey(id)+".path")
	if res.Type != gjson.String || res.Str == "" {
		return "", false
	}
	return m.absolute(res.Str), true
}

// Register maps id to assetPath and persists the manifest.
func (m *ManifestResolver) Register(id, assetPath string) error {
	if id == "" {
		return fmt.Errorf("%w: empty asset id", ErrManifest)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(); err != nil {
		return err
	}

	data, err := sjson.SetBytes(m.data, "assets."+escapeKey(id)+".path", filepath.ToSlash(assetPath))
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrManifest, m.path, err)
	}
	data = pretty.Pretty(data)

	if err := vfs.WriteFileAtomic(m.fs, m.path, data, 0o644); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrManifest, m.path, err)
	}
	m.data = data
	return nil
}

// Entries returns every mapping in the manifest sorted by id. Paths are
// returned as stored, not resolved against the manifest directory.
func (m *ManifestResolver) Entries() ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.load(); err != nil {
		return nil, err
	}

	var entries []Entry
	gjson.GetBytes(m.data, "assets").ForEach(func(key, value gjson.Result) bool {
		if p := value.Get("path"); p.Type == gjson.String {
			entries = append(entries, Entry{ID: key.String(), Path: p.Str})
		}
		return true
	})
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// Reload discards the cached manifest so the next lookup rereads the file.
func (m *ManifestResolver) Reload() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loaded = false
	m.data = nil
}

func (m *ManifestResolver) load() error {
	if m.loaded {
		return nil
	}

	data, err := m.fs.ReadFile(m.path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		data = []byte(emptyManifest)
	case err != nil:
		return fmt.Errorf("%w: %s: %v", ErrManifest, m.path, err)
	case !gjson.ValidBytes(data):
		return fmt.Errorf("%w: %s: invalid JSON", ErrManifest, m.path)
	}

	m.data = data
	m.loaded = true
	return nil
}

func (m *ManifestResolver) absolute(p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(filepath.Dir(m.path), p)
}

// escapeKey escapes the characters gjson and sjson treat as path syntax so
// an asset id is always read as a single key.
func escapeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		switch r {
		case '.', '*', '?', '|', '#', '@', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
