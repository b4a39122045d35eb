// Package preview renders the change a patch run would make to its target.
package preview

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/alecthomas/chroma"
	"github.com/alecthomas/chroma/formatters"
	"github.com/alecthomas/chroma/lexers"
	"github.com/alecthomas/chroma/styles"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// DefaultContext is the number of unchanged lines shown around a change.
const DefaultContext = 3

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "monokai"

// Stats counts changed lines.
type Stats struct {
	Added   int
	Removed int
}

// String returns the stats as "+a -r".
func (s Stats) String() string {
	return fmt.Sprintf("+%d -%d", s.Added, s.Removed)
}

// Changed reports whether any line differs.
func (s Stats) Changed() bool {
	return s.Added > 0 || s.Removed > 0
}

// Unified returns a unified diff from before to after. The labels name
// both sides after path. An empty string means the line sets are equal.
func Unified(path string, before, after []string, context int) (string, error) {
	if slices.Equal(before, after) {
		return "", nil
	}
	if context < 0 {
		context = DefaultContext
	}

	diff := difflib.UnifiedDiff{
		A:        terminate(before),
		B:        terminate(after),
		FromFile: "a/" + strings.TrimPrefix(path, "/"),
		ToFile:   "b/" + strings.TrimPrefix(path, "/"),
		Context:  context,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("unified diff: %w", err)
	}
	return text, nil
}

// Compute counts the lines added and removed between before and after.
func Compute(before, after []string) Stats {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(join(before), join(after))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var s Stats
	for _, d := range diffs {
		n := strings.Count(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			s.Added += n
		case diffmatchpatch.DiffDelete:
			s.Removed += n
		}
	}
	return s
}

// Highlight writes diff to w with terminal colours. Unknown style names
// fall back to chroma's default style.
func Highlight(w io.Writer, diff, style string) error {
	lexer := lexers.Get("diff")
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	if style == "" {
		style = DefaultStyle
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, diff)
	if err != nil {
		return fmt.Errorf("tokenise diff: %w", err)
	}
	return formatter.Format(w, styles.Get(style), it)
}

// terminate returns lines each ending in "\n", as difflib expects.
func terminate(lines []string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l + "\n"
	}
	return out
}

func join(lines []string) string {
	return strings.Join(terminate(lines), "")
}
