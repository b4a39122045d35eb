package interp

import (
	"errors"
	"fmt"

	"github.com/dshills/assetpatch/internal/patch"
)

// Errors reported by instruction execution.
var (
	// ErrLineNotFound indicates a find matched no line at or after the cursor.
	ErrLineNotFound = errors.New("line not found")

	// ErrCursorOutOfRange indicates an instruction would move the cursor
	// outside [0, len], or needs a line at a cursor that has none.
	ErrCursorOutOfRange = errors.New("cursor out of range")

	// ErrMarkedInstruction indicates the document still holds an
	// instruction staged for removal.
	ErrMarkedInstruction = errors.New("instruction is marked for removal")
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	// SeverityError marks a failing instruction.
	SeverityError Severity = iota
	// SeverityWarning marks an instruction that ran but deserves attention.
	SeverityWarning
)

// String returns the severity name.
func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic describes a problem with one instruction.
type Diagnostic struct {
	Index    int          // Position of the instruction in the document
	Op       patch.Opcode // Opcode of the instruction
	Content  string       // Content of the instruction
	Cursor   int          // Cursor when the instruction ran
	Severity Severity
	Err      error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("instruction %d (%s): %v", d.Index, d.Op, d.Err)
}

// Unwrap returns the underlying error.
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// Failed reports whether the diagnostic marks a failing instruction.
func (d *Diagnostic) Failed() bool {
	return d.Severity == SeverityError
}
