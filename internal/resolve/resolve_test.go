package resolve

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/assetpatch/internal/vfs"
)

func TestPath(t *testing.T) {
	r := Map{"abc": "/proj/Assets/a.txt"}

	assert.Equal(t, "/proj/Assets/a.txt", Path(r, "abc"))
	assert.Equal(t, "missing", Path(r, "missing"), "miss returns the reference")
	assert.Equal(t, "x.txt", Path(nil, "x.txt"), "nil resolver returns the reference")
	assert.Equal(t, "x.txt", Path(Identity, "x.txt"))

	empty := Func(func(string) (string, bool) { return "", true })
	assert.Equal(t, "ref", Path(empty, "ref"), "empty hit returns the reference")
}

func TestChain(t *testing.T) {
	first := Map{"a": "/one"}
	second := Map{"a": "/two", "b": "/three"}
	c := Chain{nil, first, second}

	p, ok := c.Resolve("a")
	require.True(t, ok)
	assert.Equal(t, "/one", p)

	p, ok = c.Resolve("b")
	require.True(t, ok)
	assert.Equal(t, "/three", p)

	_, ok = c.Resolve("c")
	assert.False(t, ok)
}

func newMetaFS(t *testing.T) *vfs.MemFS {
	t.Helper()
	fsys := vfs.NewMemFS()
	files := map[string]string{
		"/proj/Assets/a.txt":              "alpha",
		"/proj/Assets/a.txt.meta":         "fileFormatVersion: 2\nguid: 0A1B2C\nTextScriptImporter:\n  userData:\n",
		"/proj/Assets/sub/b.cfg":          "beta",
		"/proj/Assets/sub/b.cfg.meta":     "fileFormatVersion: 2\nguid: ffee01\n",
		"/proj/Assets/broken.meta":        "guid: [unterminated\n",
		"/proj/Assets/noguid.txt.meta":    "fileFormatVersion: 2\n",
		"/proj/.git/objects/x.meta":       "guid: hidden\n",
		"/proj/Assets/dup/c.txt.meta":     "guid: ffee01\n",
		"/proj/Assets/sub/other.txt.meta": "guid: 9c4e\n",
	}
	for p, content := range files {
		require.NoError(t, fsys.AddFile(p, content))
	}
	return fsys
}

func TestMetaResolver(t *testing.T) {
	fsys := newMetaFS(t)
	r := NewMetaResolver(fsys, "/proj", nil)

	tests := []struct {
		guid string
		want string
		ok   bool
	}{
		{"0a1b2c", "/proj/Assets/a.txt", true},
		{"0A1B2C", "/proj/Assets/a.txt", true},
		{"ffee01", "/proj/Assets/dup/c.txt", true},
		{"9c4e", "/proj/Assets/sub/other.txt", true},
		{"hidden", "", false},
		{"unknown", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.guid, func(t *testing.T) {
			got, ok := r.Resolve(tt.guid)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, 3, r.Len())
}

func TestMetaResolverRefresh(t *testing.T) {
	fsys := newMetaFS(t)
	r := NewMetaResolver(fsys, "/proj", nil)

	_, ok := r.Resolve("new")
	require.False(t, ok)

	require.NoError(t, fsys.AddFile("/proj/Assets/new.txt.meta", "guid: new\n"))
	_, ok = r.Resolve("new")
	assert.False(t, ok, "index is cached until Refresh")

	require.NoError(t, r.Refresh())
	p, ok := r.Resolve("new")
	assert.True(t, ok)
	assert.Equal(t, "/proj/Assets/new.txt", p)
}

func TestMetaResolverMissingRoot(t *testing.T) {
	r := NewMetaResolver(vfs.NewMemFS(), "/nowhere", nil)

	_, ok := r.Resolve("abc")
	assert.False(t, ok)
	assert.Error(t, r.Refresh())
}

func TestManifestResolver(t *testing.T) {
	fsys := vfs.NewMemFS()
	require.NoError(t, fsys.AddFile("/proj/assets.json", `{
  "assets": {
    "hero": {"path": "Assets/hero.txt"},
    "abs": {"path": "/data/abs.txt"},
    "v1.2": {"path": "Assets/dotted.txt"},
    "nopath": {"name": "x"}
  }
}`))

	m := NewManifestResolver(fsys, "/proj/assets.json")

	tests := []struct {
		id   string
		want string
		ok   bool
	}{
		{"hero", "/proj/Assets/hero.txt", true},
		{"abs", "/data/abs.txt", true},
		{"v1.2", "/proj/Assets/dotted.txt", true},
		{"nopath", "", false},
		{"missing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, ok := m.Resolve(tt.id)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	entries, err := m.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, Entry{ID: "abs", Path: "/data/abs.txt"}, entries[0])
	assert.Equal(t, "hero", entries[1].ID)
	assert.Equal(t, "v1.2", entries[2].ID)
}

func TestManifestResolverRegister(t *testing.T) {
	fsys := vfs.NewMemFS()
	require.NoError(t, fsys.MkdirAll("/proj", 0o755))

	m := NewManifestResolver(fsys, "/proj/assets.json")
	_, ok := m.Resolve("hero")
	require.False(t, ok)

	require.NoError(t, m.Register("hero", "Assets/hero.txt"))
	require.NoError(t, m.Register("a.b", "Assets/ab.txt"))

	p, ok := m.Resolve("hero")
	require.True(t, ok)
	assert.Equal(t, "/proj/Assets/hero.txt", p)

	// A fresh resolver reads what was persisted.
	fresh := NewManifestResolver(fsys, "/proj/assets.json")
	p, ok = fresh.Resolve("a.b")
	require.True(t, ok)
	assert.Equal(t, "/proj/Assets/ab.txt", p)

	data, err := fsys.ReadFile("/proj/assets.json")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `"hero"`))
	assert.False(t, fsys.Exists("/proj/assets.json.tmp"))

	assert.ErrorIs(t, m.Register("", "x"), ErrManifest)
}

func TestManifestResolverErrors(t *testing.T) {
	fsys := vfs.NewMemFS()
	require.NoError(t, fsys.AddFile("/proj/assets.json", "{not json"))

	m := NewManifestResolver(fsys, "/proj/assets.json")
	_, ok := m.Resolve("hero")
	assert.False(t, ok)

	_, err := m.Entries()
	assert.True(t, errors.Is(err, ErrManifest))

	require.NoError(t, fsys.WriteFile("/proj/assets.json", []byte(`{"assets":{}}`), 0o644))
	m.Reload()
	fsys.SetReadOnly("/proj/assets.json", true)
	assert.ErrorIs(t, m.Register("hero", "Assets/hero.txt"), ErrManifest)
}

func TestEscapeKey(t *testing.T) {
	assert.Equal(t, "plain", escapeKey("plain"))
	assert.Equal(t, `a\.b\*c`, escapeKey("a.b*c"))
}
