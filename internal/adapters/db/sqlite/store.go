package sqlite

import (
	"context"
	"database/sql"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

// Store hands out transaction-scoped repository bundles for work that must
// commit or roll back as one unit.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) WithStore(ctx context.Context, fn func(ports.SentenceStore) error) error {
	return WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(&txStore{
			sentences:   NewSentenceRepo(tx),
			tokens:      NewTokenRepo(tx),
			annotations: NewAnnotationRepo(tx),
			idioms:      NewIdiomRepo(tx),
			notes:       NewNoteRepo(tx),
		})
	})
}

// txStore adapts the per-aggregate repositories to the narrow contract the
// reconciler and the multi-row commands work against.
type txStore struct {
	sentences   *SentenceRepo
	tokens      *TokenRepo
	annotations *AnnotationRepo
	idioms      *IdiomRepo
	notes       *NoteRepo
}

func (t *txStore) Sentence(ctx context.Context, id int64) (*domain.Sentence, error) {
	return t.sentences.Get(ctx, id)
}

func (t *txStore) InsertSentence(ctx context.Context, s *domain.Sentence) error {
	return t.sentences.Create(ctx, s)
}

func (t *txStore) SetSentenceText(ctx context.Context, id int64, text string) error {
	return t.sentences.SetText(ctx, id, text)
}

func (t *txStore) TokensBySentence(ctx context.Context, sentenceID int64) ([]*domain.Token, error) {
	return t.tokens.ListBySentence(ctx, sentenceID)
}

func (t *txStore) InsertToken(ctx context.Context, tok *domain.Token) error {
	return t.tokens.Insert(ctx, tok)
}

func (t *txStore) UpdateToken(ctx context.Context, tok *domain.Token) error {
	return t.tokens.Update(ctx, tok)
}

func (t *txStore) DeleteToken(ctx context.Context, id int64) error {
	return t.tokens.Delete(ctx, id)
}

func (t *txStore) ParkTokenPositions(ctx context.Context, sentenceID int64) error {
	return t.tokens.ParkPositions(ctx, sentenceID)
}

func (t *txStore) AnnotationByToken(ctx context.Context, tokenID int64) (*domain.Annotation, error) {
	return t.annotations.GetByToken(ctx, tokenID)
}

func (t *txStore) AnnotationByIdiom(ctx context.Context, idiomID int64) (*domain.Annotation, error) {
	return t.annotations.GetByIdiom(ctx, idiomID)
}

func (t *txStore) InsertAnnotation(ctx context.Context, a *domain.Annotation) error {
	return t.annotations.Insert(ctx, a)
}

func (t *txStore) DeleteAnnotationByToken(ctx context.Context, tokenID int64) error {
	return t.annotations.DeleteByToken(ctx, tokenID)
}

func (t *txStore) DeleteAnnotationByIdiom(ctx context.Context, idiomID int64) error {
	return t.annotations.DeleteByIdiom(ctx, idiomID)
}

func (t *txStore) IdiomsBySentence(ctx context.Context, sentenceID int64) ([]*domain.Idiom, error) {
	return t.idioms.ListBySentence(ctx, sentenceID)
}

func (t *txStore) InsertIdiom(ctx context.Context, i *domain.Idiom) error {
	return t.idioms.Create(ctx, i)
}

func (t *txStore) DeleteIdiom(ctx context.Context, id int64) error {
	return t.idioms.Delete(ctx, id)
}

func (t *txStore) NotesBySentence(ctx context.Context, sentenceID int64) ([]*domain.Note, error) {
	return t.notes.ListBySentence(ctx, sentenceID)
}

func (t *txStore) InsertNote(ctx context.Context, n *domain.Note) error {
	return t.notes.Create(ctx, n)
}

func (t *txStore) SetNoteSpan(ctx context.Context, noteID int64, start, end *int64) error {
	return t.notes.SetSpan(ctx, noteID, start, end)
}
