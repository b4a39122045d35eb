// Package resolve maps opaque patch targets, such as asset ids, to file
// paths.
//
// A lookup miss is not an error: callers fall back to treating the
// reference itself as a path (see Path).
package resolve

import "errors"

// ErrManifest indicates a manifest file could not be read or updated.
var ErrManifest = errors.New("manifest error")

// Resolver maps a target reference to a path.
type Resolver interface {
	// Resolve returns the path for ref and true, or "" and false when ref
	// is unknown.
	Resolve(ref string) (string, bool)
}

// Path resolves ref with r, returning ref verbatim on a miss or when r is nil.
func Path(r Resolver, ref string) string {
	if r == nil {
		return ref
	}
	if p, ok := r.Resolve(ref); ok && p != "" {
		return p
	}
	return ref
}

// Func adapts a function to the Resolver interface.
type Func func(ref string) (string, bool)

// Resolve calls f(ref).
func (f Func) Resolve(ref string) (string, bool) {
	return f(ref)
}

// Map resolves references from a fixed table.
type Map map[string]string

// Resolve looks ref up in the table.
func (m Map) Resolve(ref string) (string, bool) {
	p, ok := m[ref]
	return p, ok
}

// Chain tries each resolver in order and returns the first hit.
type Chain []Resolver

// Resolve returns the first successful resolution.
func (c Chain) Resolve(ref string) (string, bool) {
	for _, r := range c {
		if r == nil {
			continue
		}
		if p, ok := r.Resolve(ref); ok {
			return p, true
		}
	}
	return "", false
}

// Identity never resolves, so every reference is used as a path.
var Identity Resolver = Func(func(string) (string, bool) { return "", false })
