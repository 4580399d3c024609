package ports

import (
	"context"
	"wordhord/internal/domain"
)

// TxRunner runs fn inside a single storage transaction. The store handed to
// fn is valid only for the duration of the call; any error from fn rolls the
// whole transaction back, so a half-applied token renumbering is never
// visible.
type TxRunner interface {
	WithStore(ctx context.Context, fn func(SentenceStore) error) error
}

// SentenceStore is the read/write contract reconciliation, the multi-row
// commands and bulk import work against, always inside one transaction.
type SentenceStore interface {
	Sentence(ctx context.Context, id int64) (*domain.Sentence, error)
	InsertSentence(ctx context.Context, s *domain.Sentence) error
	SetSentenceText(ctx context.Context, id int64, text string) error

	TokensBySentence(ctx context.Context, sentenceID int64) ([]*domain.Token, error)
	InsertToken(ctx context.Context, t *domain.Token) error
	UpdateToken(ctx context.Context, t *domain.Token) error
	DeleteToken(ctx context.Context, id int64) error
	// ParkTokenPositions moves every token of the sentence to a scratch
	// position so the per-sentence position uniqueness constraint cannot
	// trip while survivors are renumbered.
	ParkTokenPositions(ctx context.Context, sentenceID int64) error

	AnnotationByToken(ctx context.Context, tokenID int64) (*domain.Annotation, error)
	AnnotationByIdiom(ctx context.Context, idiomID int64) (*domain.Annotation, error)
	InsertAnnotation(ctx context.Context, a *domain.Annotation) error
	DeleteAnnotationByToken(ctx context.Context, tokenID int64) error
	DeleteAnnotationByIdiom(ctx context.Context, idiomID int64) error

	IdiomsBySentence(ctx context.Context, sentenceID int64) ([]*domain.Idiom, error)
	InsertIdiom(ctx context.Context, i *domain.Idiom) error
	DeleteIdiom(ctx context.Context, id int64) error

	NotesBySentence(ctx context.Context, sentenceID int64) ([]*domain.Note, error)
	InsertNote(ctx context.Context, n *domain.Note) error
	SetNoteSpan(ctx context.Context, noteID int64, start, end *int64) error
}
