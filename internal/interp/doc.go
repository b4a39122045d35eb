// Package interp executes patch documents against a line buffer.
//
// An Apply call owns a private copy of the target's lines and a single
// cursor, both starting fresh. Instructions run strictly in order, index 0
// first; each one observes the buffer and cursor left by its predecessor.
//
// # Modes
//
// In ModeTest a failing instruction is recorded as a Diagnostic and skipped:
// the buffer and cursor are left as they were and execution continues, so one
// pass surfaces every faulty instruction. In ModeCommit the first failure
// aborts the run and the buffer is discarded.
//
// The interpreter never touches disk. Persisting a committed buffer,
// including the backup of the original file, is the job of package patcher.
//
// # Cursor rules
//
//	find     cursor = first index >= cursor whose line equals content
//	skip     cursor += n, result must stay within [0, len]
//	remove   delete lines [cursor, cursor+n), cursor unchanged
//	replace  lines[cursor] = content, cursor must be a line index
//	append   insert content after lines[cursor], cursor += 1
//	goto     cursor = n, n within [0, len]
//	mark     no effect, reported as a warning
package interp
