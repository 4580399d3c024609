package domain

import "time"

// Idiom is a labeled span over a contiguous token range inside one sentence,
// identified by its two endpoint token IDs. Both endpoints must exist, belong
// to the same sentence, and satisfy start position <= end position; the
// reconciler tears the idiom down when an edit breaks that.
type Idiom struct {
	ID           int64     `json:"id"`
	SentenceID   int64     `json:"sentence_id"`
	StartTokenID int64     `json:"start_token_id"`
	EndTokenID   int64     `json:"end_token_id"`
	Label        string    `json:"label"`
	CreatedAt    time.Time `json:"created_at"`
}

// Note is scholarly commentary on a sentence, optionally scoped to a token
// sub-range. Unlike idioms, notes survive token removal: a removed endpoint
// is nulled and the note degrades to sentence level.
type Note struct {
	ID           int64     `json:"id"`
	SentenceID   int64     `json:"sentence_id"`
	StartTokenID *int64    `json:"start_token_id,omitempty"`
	EndTokenID   *int64    `json:"end_token_id,omitempty"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
