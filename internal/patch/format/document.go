package format

import (
	"errors"
	"fmt"

	"github.com/dshills/assetpatch/internal/patch"
	"github.com/dshills/assetpatch/internal/vfs"
)

// storedInstruction is the serialized form of patch.Instruction.
type storedInstruction struct {
	Op      string `json:"op" yaml:"op" toml:"op"`
	Content string `json:"content,omitempty" yaml:"content,omitempty" toml:"content,omitempty"`
}

// storedDocument is the root structure of a document file.
type storedDocument struct {
	Version      int                 `json:"version" yaml:"version" toml:"version"`
	Target       string              `json:"target" yaml:"target" toml:"target"`
	Instructions []storedInstruction `json:"instructions" yaml:"instructions" toml:"instructions"`
}

// Encode serializes doc in format f.
func Encode(f Format, doc *patch.Document) ([]byte, error) {
	stored := storedDocument{
		Version:      CurrentVersion,
		Target:       doc.Target,
		Instructions: make([]storedInstruction, len(doc.Instructions)),
	}
	for i, in := range doc.Instructions {
		if !in.Op.Valid() {
			return nil, fmt.Errorf("instruction %d: %w: %s", i, patch.ErrUnknownOpcode, in.Op)
		}
		stored.Instructions[i] = storedInstruction{Op: in.Op.String(), Content: in.Content}
	}

	data, err := marshal(f, stored)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	return data, nil
}

// Decode parses a document in format f. Opcode names are matched
// case-insensitively and may use the accepted aliases.
func Decode(f Format, data []byte) (*patch.Document, error) {
	var stored storedDocument
	if err := unmarshal(f, data, &stored); err != nil {
		return nil, err
	}
	if err := checkVersion(stored.Version); err != nil {
		return nil, err
	}

	doc := &patch.Document{
		Target:       stored.Target,
		Instructions: make([]patch.Instruction, len(stored.Instructions)),
	}
	for i, in := range stored.Instructions {
		op, err := patch.ParseOpcode(in.Op)
		if err != nil {
			return nil, fmt.Errorf("instruction %d: %w", i, err)
		}
		doc.Instructions[i] = patch.Instruction{Op: op, Content: in.Content}
	}
	return doc, nil
}

// Load reads the document at path, choosing the format from its extension.
func Load(fsys vfs.VFS, path string) (*patch.Document, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	data, err := fsys.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}

	doc, err := Decode(f, data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return doc, nil
}

// Save writes doc to path atomically, choosing the format from its
// extension.
func Save(fsys vfs.VFS, path string, doc *patch.Document) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}

	data, err := Encode(f, doc)
	if err != nil {
		return err
	}
	return vfs.WriteFileAtomic(fsys, path, data, 0o644)
}

// withPath fills in the path of a ParseError, or prefixes other errors
// with it.
func withPath(err error, path string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		pe.Path = path
		return pe
	}
	return fmt.Errorf("%s: %w", path, err)
}
