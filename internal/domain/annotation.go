package domain

import (
	"encoding/json"
	"time"
)

// Annotation carries the grammatical analysis of exactly one owner: a token
// or an idiom. Repos enforce the exactly-one-owner rule; deleting the owner
// deletes the annotation.
type Annotation struct {
	ID      int64  `json:"id"`
	TokenID *int64 `json:"token_id,omitempty"`
	IdiomID *int64 `json:"idiom_id,omitempty"`

	PartOfSpeech string `json:"part_of_speech"` // noun, verb, adj, adv, pron, prep, conj, num, interj, part
	Case         string `json:"case"`           // nom, acc, gen, dat, inst
	Gender       string `json:"gender"`         // m, f, n
	Number       string `json:"number"`         // sg, du, pl
	Person       string `json:"person"`         // 1, 2, 3
	Tense        string `json:"tense"`          // pres, pret
	Mood         string `json:"mood"`           // ind, subj, imp, inf, part
	Degree       string `json:"degree"`         // pos, comp, sup
	VerbClass    string `json:"verb_class"`     // strong I-VII, weak 1-3, pret-pres, anom

	Meaning string `json:"meaning"`
	Root    string `json:"root"` // dictionary headword / lemma

	Uncertain       bool    `json:"uncertain"`
	Confidence      float64 `json:"confidence"`       // 0..1
	AlternativesRaw string  `json:"alternatives_raw"` // JSON array of alternative readings

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AlternativeReading is one entry of the serialized alternatives list.
type AlternativeReading struct {
	PartOfSpeech string `json:"part_of_speech,omitempty"`
	Case         string `json:"case,omitempty"`
	Gender       string `json:"gender,omitempty"`
	Number       string `json:"number,omitempty"`
	Meaning      string `json:"meaning,omitempty"`
}

func (a *Annotation) Alternatives() ([]AlternativeReading, error) {
	if a.AlternativesRaw == "" {
		return nil, nil
	}
	var alts []AlternativeReading
	if err := json.Unmarshal([]byte(a.AlternativesRaw), &alts); err != nil {
		return nil, err
	}
	return alts, nil
}

func (a *Annotation) SetAlternatives(alts []AlternativeReading) error {
	if len(alts) == 0 {
		a.AlternativesRaw = ""
		return nil
	}
	b, err := json.Marshal(alts)
	if err != nil {
		return err
	}
	a.AlternativesRaw = string(b)
	return nil
}
