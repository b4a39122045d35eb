package patcher

import (
	"context"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/dshills/assetpatch/internal/patch"
	"github.com/dshills/assetpatch/internal/patch/format"
	"github.com/dshills/assetpatch/internal/vfs"
)

// GroupEntry is one document of a group. Err is set when the document
// could not be loaded.
type GroupEntry struct {
	Path     string
	Document *patch.Document
	Err      error
}

// GroupResult is the outcome of one group entry.
type GroupResult struct {
	Path   string
	Report *Report
	Err    error
}

// OK reports whether the entry loaded, ran and succeeded.
func (g GroupResult) OK() bool {
	return g.Err == nil && g.Report != nil && g.Report.OK()
}

// GroupReport is the outcome of ApplyAll.
type GroupReport struct {
	RunID   string
	Name    string
	Results []GroupResult
}

// OK reports whether every entry succeeded.
func (g *GroupReport) OK() bool {
	for _, r := range g.Results {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Failed returns the number of entries that did not succeed.
func (g *GroupReport) Failed() int {
	n := 0
	for _, r := range g.Results {
		if !r.OK() {
			n++
		}
	}
	return n
}

// LoadGroup reads the group file at path and loads each of its documents.
// Documents that fail to load are returned as entries with Err set.
func LoadGroup(fsys vfs.VFS, path string) (*patch.Group, []GroupEntry, error) {
	g, err := format.LoadGroup(fsys, path)
	if err != nil {
		return nil, nil, err
	}

	paths := g.Paths(filepath.Dir(path))
	entries := make([]GroupEntry, len(paths))
	for i, p := range paths {
		doc, err := format.Load(fsys, p)
		entries[i] = GroupEntry{Path: p, Document: doc, Err: err}
	}
	return g, entries, nil
}

// ApplyAll runs each entry in order, one at a time. A failing entry does
// not stop the ones after it. Cancellation is checked between entries;
// when ctx is done the partial report is returned with ctx's error.
func (p *Patcher) ApplyAll(ctx context.Context, name string, entries []GroupEntry, opts Options) (*GroupReport, error) {
	report := &GroupReport{RunID: uuid.NewString(), Name: name}
	log := p.log.WithFields(map[string]any{"group": name, "run": report.RunID})

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			log.Warn("stopped after %d of %d documents: %v", len(report.Results), len(entries), err)
			return report, err
		}

		if e.Err != nil {
			report.Results = append(report.Results, GroupResult{Path: e.Path, Err: e.Err})
			continue
		}

		r, err := p.Apply(e.Document, opts)
		report.Results = append(report.Results, GroupResult{Path: e.Path, Report: r, Err: err})
	}

	log.Info("%s: %d documents, %d failed", opts.Mode, len(entries), report.Failed())
	return report, nil
}
