package exporter

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Selection is a parsed sentence-range expression such as "3", "3-7" or
// "1,4-9". Numbers are 1-based display numbers.
type Selection struct {
	spans []span
}

type span struct {
	start, end int
}

//nolint:govet // participle grammar tags are not standard struct tags
type selectionGrammar struct {
	First spanPart   `@@`
	Rest  []spanPart `( "," @@ )*`
}

//nolint:govet // participle grammar tags are not standard struct tags
type spanPart struct {
	Start int  `@Int`
	End   *int `( "-" @Int )?`
}

var selectionLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Punct", Pattern: `[,\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var selectionParser = participle.MustBuild[selectionGrammar](
	participle.Lexer(selectionLexer),
	participle.Elide("Whitespace"),
)

// ParseSelection parses a range expression. Single numbers, dashed ranges
// and comma-joined mixtures are accepted; ranges must ascend and start at 1
// or later.
func ParseSelection(s string) (*Selection, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty range expression")
	}
	parsed, err := selectionParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("invalid range %q: %w", s, err)
	}
	parts := append([]spanPart{parsed.First}, parsed.Rest...)
	sel := &Selection{spans: make([]span, 0, len(parts))}
	for _, p := range parts {
		sp := span{start: p.Start, end: p.Start}
		if p.End != nil {
			sp.end = *p.End
		}
		if sp.start < 1 {
			return nil, fmt.Errorf("invalid range %q: sentence numbers start at 1", s)
		}
		if sp.end < sp.start {
			return nil, fmt.Errorf("invalid range %q: %d-%d descends", s, sp.start, sp.end)
		}
		sel.spans = append(sel.spans, sp)
	}
	return sel, nil
}

// Contains reports whether the 1-based sentence number is selected.
func (s *Selection) Contains(n int) bool {
	for _, sp := range s.spans {
		if n >= sp.start && n <= sp.end {
			return true
		}
	}
	return false
}
