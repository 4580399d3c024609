// Package csv exports one row per token with its annotation columns spread
// flat, for spreadsheet work and corpus tooling.
package csv

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "csv" }

var header = []string{
	"sentence", "position", "surface", "part_of_speech", "case", "gender",
	"number", "person", "tense", "mood", "degree", "verb_class", "meaning",
	"root", "uncertain", "confidence", "idiom",
}

func (e *Exporter) Export(doc *ports.ExportDocument) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, es := range doc.Sentences {
		spans := idiomSpans(es)
		for _, et := range es.Tokens {
			row := []string{
				strconv.Itoa(es.Sentence.Position),
				strconv.Itoa(et.Token.Position),
				et.Token.Surface,
			}
			row = append(row, annotationCells(et.Annotation)...)
			row = append(row, coveringIdiom(spans, et.Token.Position))
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

type span struct {
	start, end int
	label      string
}

// idiomSpans resolves idiom endpoints to token positions.
func idiomSpans(es *ports.ExportSentence) []span {
	posOf := map[int64]int{}
	for _, et := range es.Tokens {
		posOf[et.Token.ID] = et.Token.Position
	}
	spans := make([]span, 0, len(es.Idioms))
	for _, ei := range es.Idioms {
		label := ei.Idiom.Label
		if label == "" {
			label = "idiom"
		}
		spans = append(spans, span{
			start: posOf[ei.Idiom.StartTokenID],
			end:   posOf[ei.Idiom.EndTokenID],
			label: label,
		})
	}
	return spans
}

func coveringIdiom(spans []span, pos int) string {
	for _, sp := range spans {
		if pos >= sp.start && pos <= sp.end {
			return sp.label
		}
	}
	return ""
}

func annotationCells(a *domain.Annotation) []string {
	if a == nil {
		return make([]string, 13)
	}
	return []string{
		a.PartOfSpeech, a.Case, a.Gender, a.Number, a.Person, a.Tense,
		a.Mood, a.Degree, a.VerbClass, a.Meaning, a.Root,
		strconv.FormatBool(a.Uncertain),
		strconv.FormatFloat(a.Confidence, 'g', -1, 64),
	}
}
