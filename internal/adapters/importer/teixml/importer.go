// Package teixml imports TEI-flavoured XML editions, the common digital
// format for Old English texts (Dictionary of Old English corpus, digital
// facsimiles). Element names are matched by local name, so the TEI default
// namespace needs no special handling.
package teixml

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/antchfx/xmlquery"

	"wordhord/internal/ports"
)

type Importer struct{}

func New() *Importer { return &Importer{} }

func (i *Importer) Format() string { return "teixml" }

func (i *Importer) Parse(data []byte) (ports.ImportResult, error) {
	doc, err := xmlquery.Parse(bytes.NewReader(data))
	if err != nil {
		return ports.ImportResult{}, fmt.Errorf("parse tei xml: %w", err)
	}

	res := ports.ImportResult{Title: title(doc)}

	// Prose paragraphs and verse line groups, in document order. Nested
	// stanza groups are folded into their outermost <lg>.
	nodes, err := xmlquery.QueryAll(doc, "//body//p | //body//lg[not(ancestor::lg)]")
	if err != nil {
		return ports.ImportResult{}, fmt.Errorf("tei xpath: %w", err)
	}
	for _, n := range nodes {
		var para string
		if n.Data == "lg" {
			para = verseLines(n)
		} else {
			para = collapse(n.InnerText())
		}
		if para != "" {
			res.Paragraphs = append(res.Paragraphs, para)
		}
	}

	if len(res.Paragraphs) == 0 {
		// Unstructured body: take the whole text element as one block.
		if body, _ := xmlquery.Query(doc, "//text"); body != nil {
			if para := collapse(body.InnerText()); para != "" {
				res.Paragraphs = append(res.Paragraphs, para)
			}
		}
	}
	if len(res.Paragraphs) == 0 {
		return ports.ImportResult{}, errors.New("tei document has no text content")
	}
	return res, nil
}

func title(doc *xmlquery.Node) string {
	for _, expr := range []string{"//teiHeader//titleStmt/title", "//teiHeader//title", "//title"} {
		if n, _ := xmlquery.Query(doc, expr); n != nil {
			if t := collapse(n.InnerText()); t != "" {
				return t
			}
		}
	}
	return ""
}

// verseLines joins the <l> descendants of a line group with single spaces,
// so a stanza arrives at the splitter as one run of text.
func verseLines(lg *xmlquery.Node) string {
	lines, err := xmlquery.QueryAll(lg, ".//l")
	if err != nil || len(lines) == 0 {
		return collapse(lg.InnerText())
	}
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		if s := collapse(l.InnerText()); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
