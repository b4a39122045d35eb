package patch

import (
	"fmt"
	"slices"

	"github.com/dshills/assetpatch/internal/resolve"
)

// Instruction is a single opcode and its content.
type Instruction struct {
	Op      Opcode
	Content string
}

// String returns the instruction as "op content".
func (in Instruction) String() string {
	if in.Content == "" {
		return in.Op.String()
	}
	return fmt.Sprintf("%s %q", in.Op, in.Content)
}

// Valid reports whether the content matches the opcode's expected kind.
func (in Instruction) Valid() bool {
	return IsContentValid(in.Op, in.Content)
}

// Document is an ordered instruction sequence addressed at one target.
// Instructions execute strictly in order, index 0 first.
type Document struct {
	// Target is the opaque reference resolved to the file being patched.
	Target string

	// Instructions is the ordered instruction sequence.
	Instructions []Instruction
}

// New creates a document for target with the given instructions.
func New(target string, instructions ...Instruction) *Document {
	return &Document{
		Target:       target,
		Instructions: slices.Clone(instructions),
	}
}

// Len returns the number of instructions.
func (d *Document) Len() int {
	return len(d.Instructions)
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	return New(d.Target, d.Instructions...)
}

// ResolveTarget returns the path the target resolves to, or the target
// reference itself when r has no mapping for it.
func (d *Document) ResolveTarget(r resolve.Resolver) string {
	return resolve.Path(r, d.Target)
}

// Validate checks every instruction's content against its opcode and
// returns one *ContentTypeMismatchError per invalid instruction, in order.
// A nil result means the document is valid.
func (d *Document) Validate() []error {
	var errs []error
	for i, in := range d.Instructions {
		if in.Valid() {
			continue
		}
		errs = append(errs, &ContentTypeMismatchError{
			Index:    i,
			Op:       in.Op,
			Content:  in.Content,
			Expected: ExpectedContentKind(in.Op),
		})
	}
	return errs
}

// Add appends an instruction with empty content. Its opcode repeats the
// last instruction's opcode, or OpFind when the document is empty.
// Returns the index of the new instruction.
func (d *Document) Add() int {
	op := OpFind
	if n := len(d.Instructions); n > 0 {
		op = d.Instructions[n-1].Op
	}
	d.Instructions = append(d.Instructions, Instruction{Op: op})
	return len(d.Instructions) - 1
}

// Insert places in at index i, shifting later instructions down.
// i may equal Len() to append.
func (d *Document) Insert(i int, in Instruction) error {
	if i < 0 || i > len(d.Instructions) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, i)
	}
	d.Instructions = slices.Insert(d.Instructions, i, in)
	return nil
}

// RemoveAt deletes the instruction at index i.
func (d *Document) RemoveAt(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.Instructions = slices.Delete(d.Instructions, i, i+1)
	return nil
}

// MoveUp swaps the instruction at i with the one before it.
// Moving the first instruction up is a no-op.
func (d *Document) MoveUp(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if i > 0 {
		d.Instructions[i-1], d.Instructions[i] = d.Instructions[i], d.Instructions[i-1]
	}
	return nil
}

// MoveDown swaps the instruction at i with the one after it.
// Moving the last instruction down is a no-op.
func (d *Document) MoveDown(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if i < len(d.Instructions)-1 {
		d.Instructions[i+1], d.Instructions[i] = d.Instructions[i], d.Instructions[i+1]
	}
	return nil
}

// Marked returns the indices of instructions staged for removal.
func (d *Document) Marked() []int {
	var idx []int
	for i, in := range d.Instructions {
		if in.Op == OpMark {
			idx = append(idx, i)
		}
	}
	return idx
}

// PurgeMarked deletes every instruction staged for removal and returns
// how many were deleted. The relative order of the rest is preserved.
func (d *Document) PurgeMarked() int {
	before := len(d.Instructions)
	d.Instructions = slices.DeleteFunc(d.Instructions, func(in Instruction) bool {
		return in.Op == OpMark
	})
	return before - len(d.Instructions)
}

func (d *Document) checkIndex(i int) error {
	if i < 0 || i >= len(d.Instructions) {
		return fmt.Errorf("%w: %d (document has %d)", ErrIndexOutOfRange, i, len(d.Instructions))
	}
	return nil
}
