// Package htmlpage imports saved web pages (online editions, library
// transcriptions) by running readability extraction over the markup and
// keeping only the article body.
package htmlpage

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"

	readability "github.com/go-shiori/go-readability"

	"wordhord/internal/ports"
	"wordhord/internal/text"
)

type Importer struct{}

func New() *Importer { return &Importer{} }

func (i *Importer) Format() string { return "htmlpage" }

func (i *Importer) Parse(data []byte) (ports.ImportResult, error) {
	// readability wants a page URL to resolve relative links; imports come
	// from local files, so a placeholder does.
	pageURL, _ := url.Parse("file:///imported.html")
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil {
		return ports.ImportResult{}, fmt.Errorf("extract article: %w", err)
	}
	paragraphs := text.SplitParagraphs(article.TextContent)
	if len(paragraphs) == 0 {
		return ports.ImportResult{}, errors.New("page has no readable content")
	}
	return ports.ImportResult{Title: article.Title, Paragraphs: paragraphs}, nil
}
