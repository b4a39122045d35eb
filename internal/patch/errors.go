package patch

import (
	"errors"
	"fmt"
)

// Errors returned by document operations.
var (
	// ErrContentTypeMismatch indicates an instruction's content cannot be
	// read as the kind its opcode expects.
	ErrContentTypeMismatch = errors.New("content type mismatch")

	// ErrUnknownOpcode indicates an opcode name was not recognised.
	ErrUnknownOpcode = errors.New("unknown opcode")

	// ErrIndexOutOfRange indicates an instruction index outside the document.
	ErrIndexOutOfRange = errors.New("instruction index out of range")
)

// ContentTypeMismatchError describes one instruction whose content does not
// match its opcode's expected kind.
type ContentTypeMismatchError struct {
	Index    int         // Position of the instruction in the document
	Op       Opcode      // Opcode of the instruction
	Content  string      // Offending content
	Expected ContentKind // Kind the opcode expects
}

// Error implements the error interface.
func (e *ContentTypeMismatchError) Error() string {
	return fmt.Sprintf("instruction %d (%s): content %q is not %s", e.Index, e.Op, e.Content, e.Expected)
}

// Unwrap returns ErrContentTypeMismatch.
func (e *ContentTypeMismatchError) Unwrap() error {
	return ErrContentTypeMismatch
}
