package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/dshills/assetpatch/internal/vfs"
)

// Content is a text file split into lines, together with the formatting
// needed to write it back the way it was read.
type Content struct {
	// Lines holds the file text without line terminators.
	Lines []string

	// LineEnding is the file's dominant terminator. It is written after
	// lines that have no entry in Endings.
	LineEnding vfs.LineEnding

	// Endings holds the terminator read after each line, parallel to
	// Lines. An empty entry falls back to LineEnding. Nil means every
	// line uses LineEnding.
	Endings []string

	// Encoding is the character encoding of the file on disk.
	Encoding vfs.Encoding

	// TrailingNewline records whether the last line was terminated.
	TrailingNewline bool
}

// NewContent creates UTF-8, LF-terminated content with a trailing newline.
func NewContent(lines ...string) *Content {
	return &Content{
		Lines:           slices.Clone(lines),
		LineEnding:      vfs.LineEndingLF,
		Encoding:        vfs.EncodingUTF8,
		TrailingNewline: true,
	}
}

// WithLines returns a copy of c holding lines instead of c.Lines.
// Lines that survive unchanged keep their own terminator. A replaced line
// takes the terminator of the line it replaced and an inserted line takes
// the terminator of the line before it.
func (c *Content) WithLines(lines []string) *Content {
	out := *c
	out.Lines = slices.Clone(lines)
	out.Endings = nil
	if c.Endings != nil {
		out.Endings = remapEndings(c.Lines, c.Endings, out.Lines)
	}
	return &out
}

func remapEndings(old, endings, lines []string) []string {
	out := make([]string, 0, len(lines))
	prev := func() string {
		if len(out) == 0 {
			return ""
		}
		return out[len(out)-1]
	}

	m := difflib.NewMatcherWithJunk(old, lines, false, nil)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'e':
			out = append(out, endings[op.I1:op.I2]...)
		case 'r':
			for k := 0; k < op.J2-op.J1; k++ {
				if op.I1+k < op.I2 {
					out = append(out, endings[op.I1+k])
				} else {
					out = append(out, prev())
				}
			}
		case 'i':
			for k := 0; k < op.J2-op.J1; k++ {
				out = append(out, prev())
			}
		}
	}
	return out
}

// ending returns the terminator written after line i.
func (c *Content) ending(i int) string {
	if i < len(c.Endings) && c.Endings[i] != "" {
		return c.Endings[i]
	}
	return c.LineEnding.Sequence()
}

// Style reports the line ending style of the content, LineEndingMixed
// when its lines use more than one terminator.
func (c *Content) Style() vfs.LineEnding {
	if c.Endings == nil {
		return c.LineEnding
	}
	return vfs.DetectLineEnding([]byte(strings.Join(c.Endings, "")))
}

// Text joins the lines, each followed by its own terminator. The last
// line is terminated only when TrailingNewline is set.
func (c *Content) Text() string {
	if len(c.Lines) == 0 {
		return ""
	}
	var b strings.Builder
	last := len(c.Lines) - 1
	for i, line := range c.Lines {
		b.WriteString(line)
		if i < last || c.TrailingNewline {
			b.WriteString(c.ending(i))
		}
	}
	return b.String()
}

// Parse decodes raw file bytes into Content.
func Parse(data []byte) (*Content, error) {
	enc := vfs.DetectEncoding(data)

	text, err := decode(enc, data)
	if err != nil {
		return nil, err
	}

	lines, endings, trailing := splitLines(text)
	return &Content{
		Lines:           lines,
		LineEnding:      vfs.DominantLineEnding([]byte(text)),
		Endings:         endings,
		Encoding:        enc,
		TrailingNewline: trailing,
	}, nil
}

// Bytes encodes the content in its encoding. Content marked ASCII that
// gained non-ASCII text is written as UTF-8.
func (c *Content) Bytes() ([]byte, error) {
	text := c.Text()
	codec := textEncoding(c.Encoding)
	if codec == nil {
		return []byte(text), nil
	}
	data, err := codec.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnencodable, c.Encoding)
	}
	return data, nil
}

func decode(enc vfs.Encoding, data []byte) (string, error) {
	codec := textEncoding(enc)
	if codec == nil {
		return string(data), nil
	}
	text, err := codec.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", enc, err)
	}
	return string(text), nil
}

// textEncoding returns the codec for enc, or nil when the bytes are used
// as-is.
func textEncoding(enc vfs.Encoding) encoding.Encoding {
	switch enc {
	case vfs.EncodingUTF8BOM:
		return unicode.UTF8BOM
	case vfs.EncodingUTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case vfs.EncodingUTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case vfs.EncodingLatin1:
		return charmap.ISO8859_1
	default:
		return nil
	}
}

// splitLines splits text on LF, CRLF and CR. It returns the lines, the
// terminator read after each one ("" for an unterminated last line) and
// whether the final line was terminated.
func splitLines(text string) ([]string, []string, bool) {
	if text == "" {
		return []string{}, []string{}, false
	}

	var lines, endings []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			lines = append(lines, text[start:i])
			endings = append(endings, "\n")
			start = i + 1
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				endings = append(endings, "\r\n")
				i++
			} else {
				endings = append(endings, "\r")
			}
			start = i + 1
		}
	}

	if start < len(text) {
		lines = append(lines, text[start:])
		endings = append(endings, "")
		return lines, endings, false
	}
	return lines, endings, true
}
