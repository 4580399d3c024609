package sqlite

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type TokenRepo struct{ *Repo }

func NewTokenRepo(db Execer) *TokenRepo { return &TokenRepo{NewRepo(db)} }

func (r *TokenRepo) Get(ctx context.Context, id int64) (*domain.Token, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, sentence_id, position, surface FROM tokens WHERE id = ?`, id)
	var t domain.Token
	if err := row.Scan(&t.ID, &t.SentenceID, &t.Position, &t.Surface); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *TokenRepo) ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Token, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, sentence_id, position, surface FROM tokens WHERE sentence_id = ? ORDER BY position`, sentenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Token
	for rows.Next() {
		var t domain.Token
		if err := rows.Scan(&t.ID, &t.SentenceID, &t.Position, &t.Surface); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *TokenRepo) Insert(ctx context.Context, t *domain.Token) error {
	q := r.SQ.Insert("tokens").Columns("sentence_id", "position", "surface").
		Values(t.SentenceID, t.Position, t.Surface)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	t.ID = id
	return nil
}

func (r *TokenRepo) Update(ctx context.Context, t *domain.Token) error {
	q := r.SQ.Update("tokens").
		Set("position", t.Position).
		Set("surface", t.Surface).
		Where(sq.Eq{"id": t.ID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *TokenRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("tokens").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// ParkPositions moves every token of the sentence to a distinct negative
// position. -p-1 never collides with another parked row or with any final
// 0-based position written afterwards.
func (r *TokenRepo) ParkPositions(ctx context.Context, sentenceID int64) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE tokens SET position = -position - 1 WHERE sentence_id = ?`, sentenceID)
	return err
}
