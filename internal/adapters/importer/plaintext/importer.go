// Package plaintext imports pasted or file-loaded text. Blank lines mark
// paragraph boundaries; everything else is kept verbatim for the splitter.
package plaintext

import (
	"bytes"

	"wordhord/internal/ports"
	"wordhord/internal/text"
)

type Importer struct{}

func New() *Importer { return &Importer{} }

func (i *Importer) Format() string { return "plaintext" }

func (i *Importer) Parse(data []byte) (ports.ImportResult, error) {
	data = stripBOM(data)
	return ports.ImportResult{Paragraphs: text.SplitParagraphs(string(data))}, nil
}

func stripBOM(b []byte) []byte {
	bom := []byte{0xEF, 0xBB, 0xBF}
	if len(b) >= 3 && bytes.Equal(b[:3], bom) {
		return b[3:]
	}
	return b
}
