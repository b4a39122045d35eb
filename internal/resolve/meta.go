package resolve

import (
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dshills/assetpatch/internal/logger"
	"github.com/dshills/assetpatch/internal/vfs"
)

// metaExt is the extension of the sidecar files that carry asset GUIDs.
const metaExt = ".meta"

// metaHeader is the part of a .meta sidecar the resolver reads.
type metaHeader struct {
	GUID string `yaml:"guid"`
}

// MetaResolver resolves asset GUIDs by scanning a project tree for .meta
// sidecar files. A sidecar "Assets/foo.txt.meta" whose YAML contains
// "guid: abc" maps abc to "Assets/foo.txt".
//
// The tree is scanned lazily on the first lookup; call Refresh to rescan.
// MetaResolver is safe for concurrent use.
type MetaResolver struct {
	fs   vfs.VFS
	root string
	log  *logger.Logger

	mu      sync.Mutex
	scanned bool
	index   map[string]string
}

// NewMetaResolver creates a resolver for the project tree at root.
func NewMetaResolver(fsys vfs.VFS, root string, log *logger.Logger) *MetaResolver {
	return &MetaResolver{
		fs:   fsys,
		root: root,
		log:  logger.OrNull(log).WithComponent("resolve"),
	}
}

// Resolve returns the asset path for guid.
func (r *MetaResolver) Resolve(guid string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.scanned {
		if err := r.scan(); err != nil {
			r.log.Warn("scanning %s: %v", r.root, err)
		}
	}
	p, ok := r.index[strings.ToLower(guid)]
	return p, ok
}

// Refresh rescans the project tree.
func (r *MetaResolver) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scan()
}

// Len returns the number of indexed GUIDs.
func (r *MetaResolver) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.index)
}

func (r *MetaResolver) scan() error {
	index := make(map[string]string)
	r.scanned = true

	err := r.fs.WalkDir(r.root, func(path string, info vfs.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != r.root && strings.HasPrefix(info.Name(), ".") {
				return vfs.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, metaExt) {
			return nil
		}

		guid, ok := r.readGUID(path)
		if !ok {
			return nil
		}
		asset := strings.TrimSuffix(path, metaExt)
		if prev, dup := index[guid]; dup {
			r.log.Warn("guid %s claimed by %s and %s", guid, prev, asset)
			return nil
		}
		index[guid] = asset
		return nil
	})

	r.index = index
	r.log.Debug("indexed %d guids under %s", len(index), r.root)
	return err
}

func (r *MetaResolver) readGUID(path string) (string, bool) {
	data, err := r.fs.ReadFile(path)
	if err != nil {
		r.log.Debug("skipping %s: %v", filepath.Base(path), err)
		return "", false
	}

	var header metaHeader
	if err := yaml.Unmarshal(data, &header); err != nil {
		r.log.Debug("skipping %s: %v", filepath.Base(path), err)
		return "", false
	}
	if header.GUID == "" {
		return "", false
	}
	return strings.ToLower(header.GUID), true
}
