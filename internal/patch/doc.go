// Package patch defines patch documents: an ordered list of line-editing
// instructions addressed at a single target file.
//
// # Instructions
//
// Each instruction pairs an Opcode with a content string. The opcode
// decides how the content is read:
//
//	find     text     move the cursor to the next line equal to the text
//	skip     integer  move the cursor forward (or back) by n lines
//	remove   integer  delete n lines starting at the cursor
//	replace  text     overwrite the line at the cursor
//	append   text     insert a new line after the cursor and move onto it
//	goto     integer  move the cursor to an absolute line index
//	mark     text     staged for deletion from the document; ignored when run
//
// Content validation is advisory. Documents may hold invalid content while
// they are being edited; Validate reports every mismatch without
// preventing execution.
//
// # Targets
//
// A document's Target is an opaque reference, typically an asset id, that
// a resolver maps to a file path. When the resolver has no mapping the
// reference itself is used as the path.
//
// Execution lives in the interp package; reading and writing documents
// lives in the format subpackage.
package patch
