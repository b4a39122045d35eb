package interp

import (
	"github.com/dshills/assetpatch/internal/patch"
)

// Step is one entry of a verbose execution trace.
type Step struct {
	Index        int
	Instruction  patch.Instruction
	CursorBefore int
	CursorAfter  int
	LinesAfter   int   // Buffer length after the instruction
	Err          error // Non-nil when the instruction failed or warned
}

// Result is the outcome of one Apply call.
type Result struct {
	// Mode is the mode the document ran in.
	Mode Mode

	// Lines is the final buffer. It is nil when a commit run aborted.
	Lines []string

	// Cursor is the cursor after the last executed instruction.
	Cursor int

	// Diagnostics lists failures and warnings in instruction order.
	Diagnostics []Diagnostic

	// Trace holds one step per executed instruction when Verbose was set.
	Trace []Step

	// Aborted is set when a commit run stopped at a failing instruction.
	Aborted bool

	// AbortedAt is the index of the instruction that aborted the run,
	// or -1.
	AbortedAt int

	// Executed counts the instructions that ran, failed ones included.
	Executed int
}

// OK reports whether every instruction succeeded. Warnings do not count
// as failures.
func (r *Result) OK() bool {
	if r.Aborted {
		return false
	}
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Failed() {
			return false
		}
	}
	return true
}

// Failures returns the failing diagnostics.
func (r *Result) Failures() []Diagnostic {
	return r.filter(SeverityError)
}

// Warnings returns the non-failing diagnostics.
func (r *Result) Warnings() []Diagnostic {
	return r.filter(SeverityWarning)
}

// Err returns the first failure, or nil when the run succeeded.
func (r *Result) Err() error {
	for i := range r.Diagnostics {
		if r.Diagnostics[i].Failed() {
			return &r.Diagnostics[i]
		}
	}
	return nil
}

func (r *Result) filter(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}
