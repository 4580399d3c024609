package domain

import (
	"encoding/json"
	"time"
)

// Preset is a saved bundle of annotation field values that can be applied
// to a token in one step, e.g. "masc. a-stem nom. sg." for common noun forms.
type Preset struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	ValuesRaw string    `json:"values_json"` // JSON object of Annotation fields
	SortOrder int       `json:"sort_order"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Values decodes the stored field bundle. IDs and owner references are
// never part of a preset, so the result is ready to hand to an annotate
// command as-is.
func (p *Preset) Values() (Annotation, error) {
	var a Annotation
	if p.ValuesRaw == "" {
		return a, nil
	}
	if err := json.Unmarshal([]byte(p.ValuesRaw), &a); err != nil {
		return Annotation{}, err
	}
	a.ID = 0
	a.TokenID = nil
	a.IdiomID = nil
	return a, nil
}

func (p *Preset) SetValues(a Annotation) error {
	a.ID = 0
	a.TokenID = nil
	a.IdiomID = nil
	a.CreatedAt = time.Time{}
	a.UpdatedAt = time.Time{}
	b, err := json.Marshal(a)
	if err != nil {
		return err
	}
	p.ValuesRaw = string(b)
	return nil
}

type Setting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}
