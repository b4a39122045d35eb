// Package format reads and writes patch documents and patch groups.
//
// Documents are stored field by field with opcodes spelled as lowercase
// names, so the files do not depend on the in-memory opcode values. The
// encoding is chosen from the file extension:
//
//	.json         JSON
//	.yaml, .yml   YAML
//	.toml         TOML
//
// Every file carries a version number; files newer than CurrentVersion are
// rejected. In TOML, integer content must still be written as a string.
package format

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is the version written by Encode.
const CurrentVersion = 1

// Errors returned by the codecs.
var (
	// ErrUnknownFormat indicates a file extension with no codec.
	ErrUnknownFormat = errors.New("unknown document format")

	// ErrUnsupportedVersion indicates a file written by a newer version.
	ErrUnsupportedVersion = errors.New("unsupported document version")
)

// Format is a document encoding.
type Format uint8

const (
	JSON Format = iota
	YAML
	TOML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case JSON:
		return "json"
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// ParseFormat parses a format name.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	case "toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
}

// FormatFor returns the format for path's extension.
func FormatFor(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return 0, fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// ParseError reports a file that could not be decoded.
type ParseError struct {
	Path    string
	Format  Format
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse %s: %s", e.Format, e.Message)
	}
	return fmt.Sprintf("parse %s: %s", e.Path, e.Message)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

func marshal(f Format, v any) ([]byte, error) {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case TOML:
		return toml.Marshal(v)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, f)
}

func unmarshal(f Format, data []byte, v any) error {
	var err error
	switch f {
	case JSON:
		err = json.Unmarshal(data, v)
	case YAML:
		err = yaml.Unmarshal(data, v)
	case TOML:
		err = toml.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownFormat, f)
	}
	if err != nil {
		return &ParseError{Format: f, Message: err.Error(), Err: err}
	}
	return nil
}

func checkVersion(v int) error {
	if v > CurrentVersion {
		return fmt.Errorf("%w: %d (max supported: %d)", ErrUnsupportedVersion, v, CurrentVersion)
	}
	return nil
}
