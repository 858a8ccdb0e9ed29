package table

// parse.go converts raw delimited text into a Dataset.
//
// Two grammars are supported:
//
//   - Simple: split on line breaks, then on the separator. No escaping and no
//     trimming; a separator is always a field boundary.
//   - Quoted: a character scanner with an "inside quotes" flag toggled by every
//     double quote. Separators and line breaks inside quotes are kept as
//     content, fields are trimmed, and blank lines disappear.
//
// Neither grammar rejects input. Malformed quoting degrades to a best-effort
// parse and empty input yields an empty Dataset.

import (
	"fmt"
	"strings"
)

// Field separators used by the acquisition surfaces.
const (
	Comma = ','
	Tab   = '\t'
)

// Grammar selects how delimited text is split into fields.
type Grammar string

const (
	GrammarSimple Grammar = "simple"
	GrammarQuoted Grammar = "quoted"
)

// ParseGrammar validates a grammar name.
func ParseGrammar(s string) (Grammar, error) {
	switch g := Grammar(strings.ToLower(strings.TrimSpace(s))); g {
	case GrammarSimple, GrammarQuoted:
		return g, nil
	default:
		return "", fmt.Errorf("unknown grammar %q", s)
	}
}

// Parse dispatches to the parser for the given grammar.
func Parse(text string, sep rune, g Grammar) Dataset {
	if g == GrammarQuoted {
		return ParseQuoted(text, sep)
	}
	return ParseSimple(text, sep)
}

// ParseSimple splits text on line breaks and each line on sep.
// Leading and trailing line breaks of the whole input are dropped so a final
// newline does not produce an extra row; field whitespace is preserved.
func ParseSimple(text string, sep rune) Dataset {
	text = strings.Trim(normalizeNewlines(text), "\n")
	if text == "" {
		return Dataset{}
	}

	lines := strings.Split(text, "\n")
	grid := make([][]string, len(lines))
	for i, line := range lines {
		grid[i] = strings.Split(line, string(sep))
	}
	return NewDataset(grid)
}

// ParseQuoted scans text character by character. A double quote toggles the
// inside-quotes flag and is not emitted. Outside quotes, sep ends a field and
// a line break ends a row. Fields are trimmed of surrounding whitespace, a
// trailing field is kept only when non-empty, and rows without fields are
// dropped. An unterminated quote keeps the rest of the input inside quotes.
func ParseQuoted(text string, sep rune) Dataset {
	text = normalizeNewlines(text)

	var (
		grid     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, strings.TrimSpace(field.String()))
		field.Reset()
	}
	endRow := func() {
		if last := strings.TrimSpace(field.String()); last != "" {
			row = append(row, last)
		}
		field.Reset()
		if len(row) > 0 {
			grid = append(grid, row)
		}
		row = nil
	}

	for _, r := range text {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == sep && !inQuotes:
			endField()
		case r == '\n' && !inQuotes:
			endRow()
		default:
			field.WriteRune(r)
		}
	}
	endRow()

	return NewDataset(grid)
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
