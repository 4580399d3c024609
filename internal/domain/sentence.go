package domain

import "time"

type Sentence struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	Position       int       `json:"position"` // display order within the project
	Text           string    `json:"text"`
	Translation    string    `json:"translation"`
	ParagraphBreak bool      `json:"paragraph_break"` // true when a new paragraph starts here
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Token is one surface unit of a sentence. Positions are zero-based and
// contiguous within a sentence; the ID is the join key for annotations,
// idiom spans and note ranges, and survives text edits whenever the
// reconciler judges the token to still be the same word.
type Token struct {
	ID         int64  `json:"id"`
	SentenceID int64  `json:"sentence_id"`
	Position   int    `json:"position"`
	Surface    string `json:"surface"`
}
