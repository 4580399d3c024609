package text

import (
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "words and final stop",
			input: "Se cyning rād.",
			want:  []string{"Se", "cyning", "rād", "."},
		},
		{
			name:  "old english letters",
			input: "Þā wæs æfter ƿintra fēa",
			want:  []string{"Þā", "wæs", "æfter", "ƿintra", "fēa"},
		},
		{
			name:  "interior hyphen joins",
			input: "middan-geard wæs",
			want:  []string{"middan-geard", "wæs"},
		},
		{
			name:  "trailing hyphen stands alone",
			input: "middan- geard",
			want:  []string{"middan", "-", "geard"},
		},
		{
			name:  "interior apostrophe joins",
			input: "Grendel's mōdor",
			want:  []string{"Grendel's", "mōdor"},
		},
		{
			name:  "punctuation separated from words",
			input: `"Ne," cwæð hē.`,
			want:  []string{`"`, "Ne", ",", `"`, "cwæð", "hē", "."},
		},
		{
			name:  "combining macron stays in word",
			input: "gān ongan",
			want:  []string{"gān", "ongan"},
		},
		{
			name:  "digits are word runes",
			input: "līne 42",
			want:  []string{"līne", "42"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "whitespace only",
			input: " \t ",
			want:  nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("Tokenize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	const s = `Hē cwæð: "Ne mæg ic," and fēoll on middan-gearde.`
	first := strings.Join(Tokenize(s), "|")
	for i := 0; i < 3; i++ {
		if got := strings.Join(Tokenize(s), "|"); got != first {
			t.Fatalf("tokenization not stable: %q vs %q", got, first)
		}
	}
}
