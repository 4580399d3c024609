package sqlite

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type IdiomRepo struct{ *Repo }

func NewIdiomRepo(db Execer) *IdiomRepo { return &IdiomRepo{NewRepo(db)} }

func (r *IdiomRepo) Create(ctx context.Context, i *domain.Idiom) error {
	now := time.Now().UTC()
	cols := []string{"sentence_id", "start_token_id", "end_token_id", "label", "created_at"}
	vals := []any{i.SentenceID, i.StartTokenID, i.EndTokenID, i.Label, now.Format(time.RFC3339)}
	if i.ID != 0 {
		// Undo restores an idiom under its old identity.
		cols = append([]string{"id"}, cols...)
		vals = append([]any{i.ID}, vals...)
	}
	q := r.SQ.Insert("idioms").Columns(cols...).Values(vals...)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if i.ID == 0 {
		id, _ := res.LastInsertId()
		i.ID = id
	}
	i.CreatedAt = now
	return nil
}

func (r *IdiomRepo) Get(ctx context.Context, id int64) (*domain.Idiom, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, sentence_id, start_token_id, end_token_id, label, created_at FROM idioms WHERE id = ?`, id)
	var i domain.Idiom
	var created string
	if err := row.Scan(&i.ID, &i.SentenceID, &i.StartTokenID, &i.EndTokenID, &i.Label, &created); err != nil {
		return nil, notFound(err)
	}
	i.CreatedAt = parseRFC3339(created)
	return &i, nil
}

func (r *IdiomRepo) ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Idiom, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, sentence_id, start_token_id, end_token_id, label, created_at
		 FROM idioms WHERE sentence_id = ? ORDER BY id`, sentenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Idiom
	for rows.Next() {
		var i domain.Idiom
		var created string
		if err := rows.Scan(&i.ID, &i.SentenceID, &i.StartTokenID, &i.EndTokenID, &i.Label, &created); err != nil {
			return nil, err
		}
		i.CreatedAt = parseRFC3339(created)
		out = append(out, &i)
	}
	return out, rows.Err()
}

func (r *IdiomRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("idioms").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
