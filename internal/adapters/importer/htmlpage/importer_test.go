package htmlpage

import (
	"strings"
	"testing"
)

// A page shaped like an online edition: navigation chrome around a single
// article body. Paragraphs are long enough for readability to score them.
const editionPage = `<!DOCTYPE html>
<html>
<head><title>The Battle of Maldon</title></head>
<body>
<nav><a href="/">Home</a> <a href="/texts">All texts</a></nav>
<article>
<p>The Battle of Maldon is the name given to an Old English poem of uncertain
date celebrating the real Battle of Maldon of 991, at which an Anglo-Saxon
army failed to repulse a Viking raid. Only a fragment of the poem survives,
the beginning and the ending both being lost.</p>
<p>Brocen wurde se wudu, and the poem opens in mid-sentence as Byrhtnoth,
ealdorman of Essex, orders his men to drive off their horses and advance on
foot against the raiders drawn up along the causeway at Northey Island.</p>
<p>The poem is preserved only in a transcript made before the manuscript
burned in the Cotton library fire of 1731, which is why modern editions rest
on that single eighteenth-century copy rather than on any medieval witness.</p>
</article>
<footer>Copyright notice and site links.</footer>
</body>
</html>`

func TestParseExtractsArticle(t *testing.T) {
	res, err := New().Parse([]byte(editionPage))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if res.Title != "The Battle of Maldon" {
		t.Errorf("title %q", res.Title)
	}
	if len(res.Paragraphs) == 0 {
		t.Fatal("no paragraphs extracted")
	}
	joined := strings.Join(res.Paragraphs, " ")
	if !strings.Contains(joined, "Brocen wurde se wudu") {
		t.Errorf("body text missing from %q", joined)
	}
}

func TestParseRejectsEmptyPage(t *testing.T) {
	if _, err := New().Parse([]byte(`<html><body></body></html>`)); err == nil {
		t.Error("empty page should fail")
	}
}

func TestFormat(t *testing.T) {
	if got := New().Format(); got != "htmlpage" {
		t.Fatalf("format %q", got)
	}
}
