package patcher

import (
	"time"

	"github.com/dshills/assetpatch/internal/interp"
	"github.com/dshills/assetpatch/internal/preview"
	"github.com/dshills/assetpatch/internal/store"
)

// Report describes one Apply call.
type Report struct {
	// RunID identifies the run in logs.
	RunID string

	// Target is the document's target reference; Path is what it
	// resolved to.
	Target string
	Path   string

	Mode     interp.Mode
	Started  time.Time
	Finished time.Time

	// Original is the target content as read before the run.
	Original *store.Content

	// Result is the interpreter outcome.
	Result *interp.Result

	// BackupPath is set when a backup was written.
	BackupPath string

	// Written is set when the target was overwritten.
	Written bool
}

// OK reports whether every instruction succeeded.
func (r *Report) OK() bool {
	return r.Result != nil && r.Result.OK()
}

// Diagnostics returns the per-instruction diagnostics.
func (r *Report) Diagnostics() []interp.Diagnostic {
	if r.Result == nil {
		return nil
	}
	return r.Result.Diagnostics
}

// Duration returns how long the run took.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Diff returns a unified diff from the original content to the run's
// final buffer, or "" when nothing changed or the run aborted.
func (r *Report) Diff() (string, error) {
	if r.Original == nil || r.Result == nil || r.Result.Lines == nil {
		return "", nil
	}
	return preview.Unified(r.Path, r.Original.Lines, r.Result.Lines, preview.DefaultContext)
}

// Stats counts the lines the run added and removed.
func (r *Report) Stats() preview.Stats {
	if r.Original == nil || r.Result == nil || r.Result.Lines == nil {
		return preview.Stats{}
	}
	return preview.Compute(r.Original.Lines, r.Result.Lines)
}

// CheckReport is the outcome of Check.
type CheckReport struct {
	Target       string
	Path         string
	TargetExists bool

	// Invalid lists one *patch.ContentTypeMismatchError per instruction
	// whose content does not match its opcode.
	Invalid []error

	// Marked lists instructions staged for removal.
	Marked []int
}

// OK reports whether the target exists and every instruction is valid.
func (c *CheckReport) OK() bool {
	return c.TargetExists && len(c.Invalid) == 0
}
