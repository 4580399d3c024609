// Package json implements the project interchange format. It is the one
// export that round-trips: token identity inside the database is not
// portable, so spans and note ranges are written as token positions and
// rebuilt on import.
package json

import (
	"encoding/json"
	"fmt"
	"time"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

// FormatVersion guards against reading documents written by a newer build.
const FormatVersion = 1

type Document struct {
	FormatVersion int        `json:"format_version"`
	Title         string     `json:"title"`
	Source        string     `json:"source,omitempty"`
	ExportedAt    time.Time  `json:"exported_at"`
	Sentences     []Sentence `json:"sentences"`
}

type Sentence struct {
	Position       int     `json:"position"`
	Text           string  `json:"text"`
	Translation    string  `json:"translation,omitempty"`
	ParagraphBreak bool    `json:"paragraph_break,omitempty"`
	Tokens         []Token `json:"tokens"`
	Idioms         []Idiom `json:"idioms,omitempty"`
	Notes          []Note  `json:"notes,omitempty"`
}

type Token struct {
	Position   int         `json:"position"`
	Surface    string      `json:"surface"`
	Annotation *Annotation `json:"annotation,omitempty"`
}

// Idiom endpoints are token positions within the sentence.
type Idiom struct {
	Start      int         `json:"start"`
	End        int         `json:"end"`
	Label      string      `json:"label,omitempty"`
	Annotation *Annotation `json:"annotation,omitempty"`
}

// Note endpoints are token positions; nil means the endpoint was lost to an
// edit or the note is sentence-level.
type Note struct {
	Start *int   `json:"start,omitempty"`
	End   *int   `json:"end,omitempty"`
	Text  string `json:"text"`
}

type Annotation struct {
	PartOfSpeech string          `json:"part_of_speech,omitempty"`
	Case         string          `json:"case,omitempty"`
	Gender       string          `json:"gender,omitempty"`
	Number       string          `json:"number,omitempty"`
	Person       string          `json:"person,omitempty"`
	Tense        string          `json:"tense,omitempty"`
	Mood         string          `json:"mood,omitempty"`
	Degree       string          `json:"degree,omitempty"`
	VerbClass    string          `json:"verb_class,omitempty"`
	Meaning      string          `json:"meaning,omitempty"`
	Root         string          `json:"root,omitempty"`
	Uncertain    bool            `json:"uncertain,omitempty"`
	Confidence   float64         `json:"confidence,omitempty"`
	Alternatives json.RawMessage `json:"alternatives,omitempty"`
}

type Exporter struct{}

func New() *Exporter { return &Exporter{} }

func (e *Exporter) Format() string { return "json" }

func (e *Exporter) Export(doc *ports.ExportDocument) ([]byte, error) {
	out := Document{
		FormatVersion: FormatVersion,
		Title:         doc.Project.Name,
		Source:        doc.Project.Source,
		ExportedAt:    time.Now().UTC(),
		Sentences:     make([]Sentence, 0, len(doc.Sentences)),
	}
	for _, es := range doc.Sentences {
		out.Sentences = append(out.Sentences, buildSentence(es))
	}
	return json.MarshalIndent(out, "", "  ")
}

// Decode reads an interchange document back, refusing versions this build
// does not know.
func Decode(data []byte) (*Document, error) {
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("decode project json: %w", err)
	}
	if d.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported format_version %d", d.FormatVersion)
	}
	return &d, nil
}

func buildSentence(es *ports.ExportSentence) Sentence {
	s := Sentence{
		Position:       es.Sentence.Position,
		Text:           es.Sentence.Text,
		Translation:    es.Sentence.Translation,
		ParagraphBreak: es.Sentence.ParagraphBreak,
		Tokens:         make([]Token, 0, len(es.Tokens)),
	}
	posOf := map[int64]int{}
	for _, et := range es.Tokens {
		posOf[et.Token.ID] = et.Token.Position
		s.Tokens = append(s.Tokens, Token{
			Position:   et.Token.Position,
			Surface:    et.Token.Surface,
			Annotation: buildAnnotation(et.Annotation),
		})
	}
	for _, ei := range es.Idioms {
		s.Idioms = append(s.Idioms, Idiom{
			Start:      posOf[ei.Idiom.StartTokenID],
			End:        posOf[ei.Idiom.EndTokenID],
			Label:      ei.Idiom.Label,
			Annotation: buildAnnotation(ei.Annotation),
		})
	}
	for _, n := range es.Notes {
		nd := Note{Text: n.Text}
		if n.StartTokenID != nil {
			if p, ok := posOf[*n.StartTokenID]; ok {
				nd.Start = &p
			}
		}
		if n.EndTokenID != nil {
			if p, ok := posOf[*n.EndTokenID]; ok {
				nd.End = &p
			}
		}
		s.Notes = append(s.Notes, nd)
	}
	return s
}

func buildAnnotation(a *domain.Annotation) *Annotation {
	if a == nil {
		return nil
	}
	out := &Annotation{
		PartOfSpeech: a.PartOfSpeech,
		Case:         a.Case,
		Gender:       a.Gender,
		Number:       a.Number,
		Person:       a.Person,
		Tense:        a.Tense,
		Mood:         a.Mood,
		Degree:       a.Degree,
		VerbClass:    a.VerbClass,
		Meaning:      a.Meaning,
		Root:         a.Root,
		Uncertain:    a.Uncertain,
		Confidence:   a.Confidence,
	}
	if a.AlternativesRaw != "" && a.AlternativesRaw != "[]" {
		out.Alternatives = json.RawMessage(a.AlternativesRaw)
	}
	return out
}

// Values maps an interchange annotation back onto the domain type.
func (a *Annotation) Values() domain.Annotation {
	out := domain.Annotation{
		PartOfSpeech: a.PartOfSpeech,
		Case:         a.Case,
		Gender:       a.Gender,
		Number:       a.Number,
		Person:       a.Person,
		Tense:        a.Tense,
		Mood:         a.Mood,
		Degree:       a.Degree,
		VerbClass:    a.VerbClass,
		Meaning:      a.Meaning,
		Root:         a.Root,
		Uncertain:    a.Uncertain,
		Confidence:   a.Confidence,
	}
	if len(a.Alternatives) > 0 {
		out.AlternativesRaw = string(a.Alternatives)
	}
	return out
}
