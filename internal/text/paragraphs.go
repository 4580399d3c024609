package text

import (
	"regexp"
	"strings"
)

var blankLine = regexp.MustCompile(`\n\s*\n`)

// SplitParagraphs cuts text into paragraph blocks at blank lines. Lines
// inside a block are joined and whitespace runs collapse to single spaces.
// Empty blocks are dropped.
func SplitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, block := range blankLine.Split(text, -1) {
		p := strings.Join(strings.Fields(block), " ")
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
