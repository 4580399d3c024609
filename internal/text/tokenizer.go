package text

import "unicode"

// Tokenize breaks one sentence into surface forms. A word is a maximal run
// of letters, digits and combining marks; a single hyphen or apostrophe
// joins two such runs into one word (middan-geard). Every other non-space
// rune stands alone as a punctuation token.
func Tokenize(sentence string) []string {
	runes := []rune(sentence)
	var tokens []string
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isWordRune(r):
			j := i + 1
			for j < len(runes) {
				if isWordRune(runes[j]) {
					j++
					continue
				}
				if (runes[j] == '-' || runes[j] == '\'') && j+1 < len(runes) && isWordRune(runes[j+1]) {
					j += 2
					continue
				}
				break
			}
			tokens = append(tokens, string(runes[i:j]))
			i = j
		default:
			tokens = append(tokens, string(r))
			i++
		}
	}
	return tokens
}

// Combining marks count as word runes so macron vowels survive in texts
// that are not precomposed (a + U+0304 versus ā).
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}
