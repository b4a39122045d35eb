package interp

import (
	"fmt"
	"slices"

	"github.com/dshills/assetpatch/internal/logger"
	"github.com/dshills/assetpatch/internal/patch"
)

// Mode selects how failures are handled.
type Mode uint8

const (
	// ModeTest records failures and keeps going.
	ModeTest Mode = iota
	// ModeCommit aborts on the first failure.
	ModeCommit
)

// String returns the mode name.
func (m Mode) String() string {
	if m == ModeCommit {
		return "commit"
	}
	return "test"
}

// Options controls one Apply call.
type Options struct {
	Mode Mode

	// Verbose records a Step per instruction and logs it at debug level.
	Verbose bool

	// StrictMarks turns instructions staged for removal into failures
	// instead of warnings.
	StrictMarks bool
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithLogger sets the logger used for traces and diagnostics.
func WithLogger(l *logger.Logger) Option {
	return func(in *Interpreter) {
		in.log = logger.OrNull(l).WithComponent("interp")
	}
}

// Interpreter executes patch documents. It holds no per-run state and is
// safe for concurrent use.
type Interpreter struct {
	log *logger.Logger
}

// New creates an interpreter.
func New(opts ...Option) *Interpreter {
	in := &Interpreter{log: logger.NullLogger}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Apply runs doc against a copy of lines with the default interpreter.
func Apply(doc *patch.Document, lines []string, opts Options) *Result {
	return New().Apply(doc, lines, opts)
}

// state is the mutable execution state of one Apply call.
type state struct {
	lines  []string
	cursor int
}

// Apply runs doc against a copy of lines. The caller's slice is never
// modified. A nil document runs no instructions.
func (in *Interpreter) Apply(doc *patch.Document, lines []string, opts Options) *Result {
	st := &state{lines: slices.Clone(lines)}
	res := &Result{Mode: opts.Mode, AbortedAt: -1}

	var instructions []patch.Instruction
	if doc != nil {
		instructions = doc.Instructions
	}

	for i, ins := range instructions {
		before := st.cursor
		err := in.exec(st, i, ins)
		res.Executed++

		var diag *Diagnostic
		if err != nil {
			diag = &Diagnostic{
				Index:    i,
				Op:       ins.Op,
				Content:  ins.Content,
				Cursor:   before,
				Severity: SeverityError,
				Err:      err,
			}
			if ins.Op == patch.OpMark && !opts.StrictMarks {
				diag.Severity = SeverityWarning
			}
			res.Diagnostics = append(res.Diagnostics, *diag)
		}

		if opts.Verbose {
			res.Trace = append(res.Trace, Step{
				Index:        i,
				Instruction:  ins,
				CursorBefore: before,
				CursorAfter:  st.cursor,
				LinesAfter:   len(st.lines),
				Err:          err,
			})
			in.log.Debug("%d %s: cursor %d -> %d, %d lines", i, ins, before, st.cursor, len(st.lines))
		}

		if diag == nil {
			continue
		}
		if !diag.Failed() {
			in.log.Debug("%s", diag.Error())
			continue
		}

		in.log.Warn("%s", diag.Error())
		if opts.Mode == ModeCommit {
			res.Aborted = true
			res.AbortedAt = i
			res.Cursor = st.cursor
			return res
		}
	}

	res.Lines = st.lines
	res.Cursor = st.cursor
	return res
}

// exec runs one instruction. On error the state is left untouched.
func (in *Interpreter) exec(st *state, index int, ins patch.Instruction) error {
	switch ins.Op {
	case patch.OpFind:
		return st.find(ins.Content)
	case patch.OpSkip:
		n, err := intContent(index, ins)
		if err != nil {
			return err
		}
		return st.skip(n)
	case patch.OpRemove:
		n, err := intContent(index, ins)
		if err != nil {
			return err
		}
		return st.remove(n)
	case patch.OpReplace:
		return st.replace(ins.Content)
	case patch.OpAppend:
		return st.append(ins.Content)
	case patch.OpGoto:
		n, err := intContent(index, ins)
		if err != nil {
			return err
		}
		return st.goTo(n)
	case patch.OpMark:
		return ErrMarkedInstruction
	default:
		return fmt.Errorf("%w: %s", patch.ErrUnknownOpcode, ins.Op)
	}
}

func intContent(index int, ins patch.Instruction) (int, error) {
	n, err := patch.ParseInteger(ins.Content)
	if err != nil {
		return 0, &patch.ContentTypeMismatchError{
			Index:    index,
			Op:       ins.Op,
			Content:  ins.Content,
			Expected: patch.KindInteger,
		}
	}
	return n, nil
}

func (st *state) find(text string) error {
	i := slices.Index(st.lines[st.cursor:], text)
	if i < 0 {
		return fmt.Errorf("%w: %q at or after line %d", ErrLineNotFound, text, st.cursor)
	}
	st.cursor += i
	return nil
}

func (st *state) skip(n int) error {
	target := st.cursor + n
	if target < 0 || target > len(st.lines) {
		return fmt.Errorf("%w: %d%+d outside [0, %d]", ErrCursorOutOfRange, st.cursor, n, len(st.lines))
	}
	st.cursor = target
	return nil
}

// remove deletes n lines at the cursor. A count of zero or less removes
// nothing.
func (st *state) remove(n int) error {
	if n <= 0 {
		return nil
	}
	if st.cursor+n > len(st.lines) {
		return fmt.Errorf("%w: cannot remove %d lines at %d of %d", ErrCursorOutOfRange, n, st.cursor, len(st.lines))
	}
	st.lines = slices.Delete(st.lines, st.cursor, st.cursor+n)
	return nil
}

func (st *state) replace(text string) error {
	if err := st.requireLine(); err != nil {
		return err
	}
	st.lines[st.cursor] = text
	return nil
}

func (st *state) append(text string) error {
	if err := st.requireLine(); err != nil {
		return err
	}
	st.lines = slices.Insert(st.lines, st.cursor+1, text)
	st.cursor++
	return nil
}

func (st *state) goTo(n int) error {
	if n < 0 || n > len(st.lines) {
		return fmt.Errorf("%w: line %d outside [0, %d]", ErrCursorOutOfRange, n, len(st.lines))
	}
	st.cursor = n
	return nil
}

// requireLine fails when the cursor sits past the last line.
func (st *state) requireLine() error {
	if st.cursor >= len(st.lines) {
		return fmt.Errorf("%w: no line at %d of %d", ErrCursorOutOfRange, st.cursor, len(st.lines))
	}
	return nil
}
