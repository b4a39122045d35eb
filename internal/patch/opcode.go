package patch

import (
	"fmt"
	"strconv"
	"strings"
)

// Opcode identifies the operation performed by an instruction.
type Opcode uint8

const (
	// OpInvalid is the zero Opcode. It expects no content and is never
	// produced by ParseOpcode.
	OpInvalid Opcode = iota
	// OpFind moves the cursor to the first matching line at or after it.
	OpFind
	// OpSkip moves the cursor by a relative number of lines.
	OpSkip
	// OpRemove deletes lines starting at the cursor.
	OpRemove
	// OpReplace overwrites the line at the cursor.
	OpReplace
	// OpAppend inserts a line after the cursor and moves onto it.
	OpAppend
	// OpGoto moves the cursor to an absolute line index.
	OpGoto
	// OpMark stages an instruction for removal from its document.
	OpMark
)

// Opcodes returns every valid opcode in declaration order.
func Opcodes() []Opcode {
	return []Opcode{OpFind, OpSkip, OpRemove, OpReplace, OpAppend, OpGoto, OpMark}
}

var opcodeNames = map[Opcode]string{
	OpFind:    "find",
	OpSkip:    "skip",
	OpRemove:  "remove",
	OpReplace: "replace",
	OpAppend:  "append",
	OpGoto:    "goto",
	OpMark:    "mark",
}

// aliases accepted by ParseOpcode in addition to the canonical names.
var opcodeAliases = map[string]Opcode{
	"patch":            OpReplace,
	"mark-for-removal": OpMark,
	"markforremoval":   OpMark,
	"mark_for_removal": OpMark,
	"markasremove":     OpMark,
}

// String returns the canonical lowercase name of the opcode.
func (op Opcode) String() string {
	if name, ok := opcodeNames[op]; ok {
		return name
	}
	return fmt.Sprintf("opcode(%d)", uint8(op))
}

// Valid reports whether op is one of the defined opcodes.
func (op Opcode) Valid() bool {
	_, ok := opcodeNames[op]
	return ok
}

// ParseOpcode parses an opcode name. Matching is case-insensitive.
func ParseOpcode(s string) (Opcode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for op, n := range opcodeNames {
		if n == name {
			return op, nil
		}
	}
	if op, ok := opcodeAliases[name]; ok {
		return op, nil
	}
	return OpInvalid, fmt.Errorf("%w: %q", ErrUnknownOpcode, s)
}

// ContentKind is the shape of content an opcode expects.
type ContentKind uint8

const (
	// KindNone expects an empty content string.
	KindNone ContentKind = iota
	// KindInteger expects a whole number.
	KindInteger
	// KindText accepts any string.
	KindText
)

// String returns the name of the content kind.
func (k ContentKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindInteger:
		return "integer"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// ExpectedContentKind returns the content kind op expects.
// Unrecognised opcodes expect KindNone.
func ExpectedContentKind(op Opcode) ContentKind {
	switch op {
	case OpFind, OpReplace, OpAppend, OpMark:
		return KindText
	case OpSkip, OpRemove, OpGoto:
		return KindInteger
	default:
		return KindNone
	}
}

// IsContentValid reports whether content can be read as the kind op expects.
func IsContentValid(op Opcode, content string) bool {
	switch ExpectedContentKind(op) {
	case KindNone:
		return content == ""
	case KindInteger:
		_, err := ParseInteger(content)
		return err == nil
	case KindText:
		return true
	default:
		return false
	}
}

// ParseInteger reads integer content. Surrounding whitespace and a
// leading sign are accepted.
func ParseInteger(content string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(content))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrContentTypeMismatch, content)
	}
	return n, nil
}
