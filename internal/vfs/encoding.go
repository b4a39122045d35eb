package vfs

import (
	"bytes"
	"unicode/utf8"
)

// Encoding represents a character encoding.
type Encoding string

const (
	// EncodingUTF8 is UTF-8 encoding (default).
	EncodingUTF8 Encoding = "utf-8"

	// EncodingUTF8BOM is UTF-8 encoding with BOM.
	EncodingUTF8BOM Encoding = "utf-8-bom"

	// EncodingUTF16LE is UTF-16 Little Endian with BOM.
	EncodingUTF16LE Encoding = "utf-16le"

	// EncodingUTF16BE is UTF-16 Big Endian with BOM.
	EncodingUTF16BE Encoding = "utf-16be"

	// EncodingLatin1 is ISO-8859-1 (Latin-1).
	EncodingLatin1 Encoding = "iso-8859-1"

	// EncodingASCII is ASCII encoding.
	EncodingASCII Encoding = "ascii"
)

// LineEnding represents the line ending style.
type LineEnding string

const (
	// LineEndingLF is Unix-style line ending (\n).
	LineEndingLF LineEnding = "lf"

	// LineEndingCRLF is Windows-style line ending (\r\n).
	LineEndingCRLF LineEnding = "crlf"

	// LineEndingCR is old Mac-style line ending (\r).
	LineEndingCR LineEnding = "cr"

	// LineEndingMixed indicates mixed line endings.
	LineEndingMixed LineEnding = "mixed"
)

// Sequence returns the byte sequence written for the line ending.
// Mixed files are written back with LF.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DetectEncoding detects the encoding of file content.
// BOM markers are checked first, then UTF-8 validity.
// Falls back to Latin-1 which accepts all byte sequences.
func DetectEncoding(content []byte) Encoding {
	switch {
	case len(content) == 0:
		return EncodingUTF8
	case bytes.HasPrefix(content, bomUTF8):
		return EncodingUTF8BOM
	case bytes.HasPrefix(content, bomUTF16LE):
		return EncodingUTF16LE
	case bytes.HasPrefix(content, bomUTF16BE):
		return EncodingUTF16BE
	case isASCII(content):
		return EncodingASCII
	case utf8.Valid(content):
		return EncodingUTF8
	}
	return EncodingLatin1
}

// HasBOM reports whether the encoding is written with a byte order mark.
func (e Encoding) HasBOM() bool {
	return e == EncodingUTF8BOM || e == EncodingUTF16LE || e == EncodingUTF16BE
}

// DetectLineEnding detects the dominant line ending in decoded text.
// Returns LineEndingMixed if more than one style holds at least 10% of
// the line breaks.
func DetectLineEnding(content []byte) LineEnding {
	lf, crlf, cr := countLineEndings(content)
	total := lf + crlf + cr
	if total == 0 {
		return LineEndingLF
	}

	threshold := max(total/10, 1)
	styles := 0
	for _, n := range []int{lf, crlf, cr} {
		if n >= threshold {
			styles++
		}
	}
	if styles > 1 {
		return LineEndingMixed
	}
	return majority(lf, crlf, cr)
}

// DominantLineEnding returns the most frequent line ending in decoded
// text. Unlike DetectLineEnding it never reports LineEndingMixed, so the
// result is always writable. Ties prefer CRLF, then LF.
func DominantLineEnding(content []byte) LineEnding {
	return majority(countLineEndings(content))
}

func countLineEndings(content []byte) (lf, crlf, cr int) {
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\r':
			if i+1 < len(content) && content[i+1] == '\n' {
				crlf++
				i++
			} else {
				cr++
			}
		case '\n':
			lf++
		}
	}
	return lf, crlf, cr
}

func majority(lf, crlf, cr int) LineEnding {
	if lf+crlf+cr == 0 {
		return LineEndingLF
	}
	if crlf >= lf && crlf >= cr {
		return LineEndingCRLF
	}
	if cr > lf {
		return LineEndingCR
	}
	return LineEndingLF
}

// IsBinary reports whether content looks like binary data: it contains
// null bytes, or more than 10% of the first 8KB are control characters
// other than tab, newline and carriage return.
func IsBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}

	sample := content[:min(len(content), 8192)]
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	nonText := 0
	for _, b := range sample {
		if b < 32 && b != '\t' && b != '\n' && b != '\r' {
			nonText++
		}
	}
	return float64(nonText)/float64(len(sample)) > 0.1
}

func isASCII(content []byte) bool {
	for _, b := range content {
		if b >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
