// Package text holds the language-side primitives: sentence segmentation
// and tokenization. Both are pure functions of their input, so everything
// downstream (import, reconciliation) can treat them as deterministic.
package text

import (
	"regexp"
	"strings"
	"unicode"
)

// Verse and line markers like [17] are edition noise, never sentence content.
var (
	numMarker      = regexp.MustCompile(`\[\d+\]`)
	danglingDigits = regexp.MustCompile(`\d+\]`)
)

// SplitSentences segments raw text into trimmed sentence strings.
//
// One left-to-right pass. A terminal mark (. ! ?) outside quotes splits only
// when the next non-space rune looks like a sentence opener: an uppercase
// letter, a quote, a bracketed digit marker, or end of input. Marks inside
// quotes never split on their own; a closing quote splits when the quoted
// text ended with a terminal mark and a new sentence follows. Abbreviations
// are not recognized beyond the lookahead rule, so "Dr. Smith" splits.
func SplitSentences(text string) []string {
	runes := []rune(text)
	var (
		raw     []string
		sb      strings.Builder
		inQuote bool
		quote   rune
	)
	flush := func() {
		s := strings.TrimSpace(sb.String())
		sb.Reset()
		if s != "" {
			raw = append(raw, s)
		}
	}
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '[' {
			if end, ok := markerEnd(runes, i); ok {
				i = end
				continue
			}
		}

		if inQuote {
			sb.WriteRune(r)
			if r != quote {
				continue
			}
			inQuote = false
			// A quoted utterance may carry the terminal mark inside
			// the quotes: `"...rād." Hē ...` still ends a sentence.
			if i > 0 && isTerminal(runes[i-1]) && splitsAfterQuote(runes, i+1) {
				flush()
			}
			continue
		}

		switch {
		case r == '"' || r == '\'':
			inQuote = true
			quote = r
			sb.WriteRune(r)
		case isTerminal(r):
			sb.WriteRune(r)
			if splitsAfter(runes, i+1) {
				flush()
			}
		default:
			sb.WriteRune(r)
		}
	}
	flush()

	// Scrub markers the scan could not consume, e.g. a bracket split
	// across a sentence boundary or a fragment with a lost open bracket.
	var out []string
	for _, s := range raw {
		s = numMarker.ReplaceAllString(s, "")
		s = danglingDigits.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// markerEnd returns the closing bracket index of a [123] marker opening at
// open, or false when the bracket is ordinary text.
func markerEnd(runes []rune, open int) (int, bool) {
	j := open + 1
	for j < len(runes) && unicode.IsDigit(runes[j]) {
		j++
	}
	if j > open+1 && j < len(runes) && runes[j] == ']' {
		return j, true
	}
	return 0, false
}

func isTerminal(r rune) bool { return r == '.' || r == '!' || r == '?' }

// splitsAfter judges a terminal mark by the first non-space rune after it.
func splitsAfter(runes []rune, pos int) bool {
	r, at, ok := nextNonSpace(runes, pos)
	if !ok {
		return true
	}
	if unicode.IsUpper(r) || r == '"' || r == '\'' {
		return true
	}
	return r == '[' && at+1 < len(runes) && unicode.IsDigit(runes[at+1])
}

// splitsAfterQuote is the closing-quote variant. End of input alone does not
// split here; the trailing flush already covers it.
func splitsAfterQuote(runes []rune, pos int) bool {
	r, at, ok := nextNonSpace(runes, pos)
	if !ok {
		return false
	}
	if unicode.IsUpper(r) {
		return true
	}
	return r == '[' && at+1 < len(runes) && unicode.IsDigit(runes[at+1])
}

func nextNonSpace(runes []rune, pos int) (rune, int, bool) {
	for i := pos; i < len(runes); i++ {
		if !unicode.IsSpace(runes[i]) {
			return runes[i], i, true
		}
	}
	return 0, 0, false
}
