package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type NoteRepo struct{ *Repo }

func NewNoteRepo(db Execer) *NoteRepo { return &NoteRepo{NewRepo(db)} }

const noteCols = "id, sentence_id, start_token_id, end_token_id, text, created_at, updated_at"

func (r *NoteRepo) Create(ctx context.Context, n *domain.Note) error {
	now := time.Now().UTC()
	cols := []string{"sentence_id", "start_token_id", "end_token_id", "text", "created_at", "updated_at"}
	vals := []any{n.SentenceID, n.StartTokenID, n.EndTokenID, n.Text, now.Format(time.RFC3339), now.Format(time.RFC3339)}
	if n.ID != 0 {
		cols = append([]string{"id"}, cols...)
		vals = append([]any{n.ID}, vals...)
	}
	q := r.SQ.Insert("notes").Columns(cols...).Values(vals...)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	if n.ID == 0 {
		id, _ := res.LastInsertId()
		n.ID = id
	}
	n.CreatedAt = now
	n.UpdatedAt = now
	return nil
}

func (r *NoteRepo) Get(ctx context.Context, id int64) (*domain.Note, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+noteCols+` FROM notes WHERE id = ?`, id)
	n, err := scanNote(row)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (r *NoteRepo) ListBySentence(ctx context.Context, sentenceID int64) ([]*domain.Note, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+noteCols+` FROM notes WHERE sentence_id = ? ORDER BY id`, sentenceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *NoteRepo) Update(ctx context.Context, n *domain.Note) error {
	now := time.Now().UTC()
	q := r.SQ.Update("notes").
		Set("start_token_id", n.StartTokenID).
		Set("end_token_id", n.EndTokenID).
		Set("text", n.Text).
		Set("updated_at", now.Format(time.RFC3339)).
		Where(sq.Eq{"id": n.ID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err == nil {
		n.UpdatedAt = now
	}
	return err
}

func (r *NoteRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("notes").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// SetSpan rewrites just the endpoint references, used when reconciliation
// degrades a note after a token delete.
func (r *NoteRepo) SetSpan(ctx context.Context, noteID int64, start, end *int64) error {
	q := r.SQ.Update("notes").
		Set("start_token_id", start).
		Set("end_token_id", end).
		Set("updated_at", nowRFC3339()).
		Where(sq.Eq{"id": noteID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func scanNote(row rowScanner) (*domain.Note, error) {
	var n domain.Note
	var start, end sql.NullInt64
	var created, updated string
	if err := row.Scan(&n.ID, &n.SentenceID, &start, &end, &n.Text, &created, &updated); err != nil {
		return nil, err
	}
	if start.Valid {
		v := start.Int64
		n.StartTokenID = &v
	}
	if end.Valid {
		v := end.Int64
		n.EndTokenID = &v
	}
	n.CreatedAt = parseRFC3339(created)
	n.UpdatedAt = parseRFC3339(updated)
	return &n, nil
}
