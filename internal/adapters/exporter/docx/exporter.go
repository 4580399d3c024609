// Package docx builds a Word document for print-oriented output: each
// sentence as a paragraph, its gloss line and translation underneath. The
// WordprocessingML is assembled by hand; the format needs only three parts
// in the zip container.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"

	"wordhord/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "docx" }

const contentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const rels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

func (e *Exporter) Export(doc *ports.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypes},
		{"_rels/.rels", rels},
		{"word/document.xml", buildDocument(doc)},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildDocument(doc *ports.ExportDocument) string {
	var body strings.Builder
	body.WriteString(titleParagraph(doc.Project.Name))
	for i, es := range doc.Sentences {
		if es.Sentence.ParagraphBreak && i > 0 {
			body.WriteString("<w:p/>")
		}
		body.WriteString(textParagraph(es.Sentence.Text))
		if gloss := glossLine(es); gloss != "" {
			body.WriteString(smallParagraph(gloss, false))
		}
		if es.Sentence.Translation != "" {
			body.WriteString(smallParagraph(es.Sentence.Translation, true))
		}
	}
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>%s</w:body></w:document>`, body.String())
}

// glossLine pairs each annotated token with its meaning, in display order.
func glossLine(es *ports.ExportSentence) string {
	var parts []string
	for _, et := range es.Tokens {
		if et.Annotation == nil || et.Annotation.Meaning == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s '%s'", et.Token.Surface, et.Annotation.Meaning))
	}
	return strings.Join(parts, "; ")
}

func titleParagraph(title string) string {
	return fmt.Sprintf(`<w:p><w:r><w:rPr><w:b/><w:sz w:val="32"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		escape(title))
}

func textParagraph(text string) string {
	return fmt.Sprintf(`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`, escape(text))
}

func smallParagraph(text string, italic bool) string {
	props := `<w:sz w:val="20"/>`
	if italic {
		props = `<w:i/>` + props
	}
	return fmt.Sprintf(`<w:p><w:r><w:rPr>%s</w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
		props, escape(text))
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return escaper.Replace(s) }
