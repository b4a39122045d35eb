package format

import (
	"fmt"

	"github.com/dshills/assetpatch/internal/patch"
	"github.com/dshills/assetpatch/internal/vfs"
)

// storedGroup is the root structure of a group file.
type storedGroup struct {
	Version   int      `json:"version" yaml:"version" toml:"version"`
	Name      string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Documents []string `json:"documents" yaml:"documents" toml:"documents"`
}

// EncodeGroup serializes g in format f.
func EncodeGroup(f Format, g *patch.Group) ([]byte, error) {
	stored := storedGroup{
		Version:   CurrentVersion,
		Name:      g.Name,
		Documents: g.Documents,
	}
	if stored.Documents == nil {
		stored.Documents = []string{}
	}

	data, err := marshal(f, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal group: %w", err)
	}
	return data, nil
}

// DecodeGroup parses a group in format f.
func DecodeGroup(f Format, data []byte) (*patch.Group, error) {
	var stored storedGroup
	if err := unmarshal(f, data, &stored); err != nil {
		return nil, err
	}
	if err := checkVersion(stored.Version); err != nil {
		return nil, err
	}
	return &patch.Group{Name: stored.Name, Documents: stored.Documents}, nil
}

// LoadGroup reads the group at path.
func LoadGroup(fsys vfs.VFS, path string) (*patch.Group, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read group: %w", err)
	}

	g, err := DecodeGroup(f, data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return g, nil
}

// SaveGroup writes g to path atomically.
func SaveGroup(fsys vfs.VFS, path string, g *patch.Group) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}

	data, err := EncodeGroup(f, g)
	if err != nil {
		return err
	}
	return vfs.WriteFileAtomic(fsys, path, data, 0o644)
}
