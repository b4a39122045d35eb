package patch

import "path/filepath"

// Group is an ordered list of patch document files that are tested or
// applied together, one at a time.
type Group struct {
	// Name is a display name for the group.
	Name string

	// Documents lists document file paths. Relative paths are relative to
	// the directory holding the group file.
	Documents []string
}

// Paths returns the group's document paths resolved against baseDir.
// Absolute paths are returned unchanged.
func (g *Group) Paths(baseDir string) []string {
	paths := make([]string, len(g.Documents))
	for i, p := range g.Documents {
		if filepath.IsAbs(p) || baseDir == "" {
			paths[i] = filepath.Clean(p)
			continue
		}
		paths[i] = filepath.Join(baseDir, p)
	}
	return paths
}
