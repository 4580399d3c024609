package sqlite

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type SentenceRepo struct{ *Repo }

func NewSentenceRepo(db Execer) *SentenceRepo { return &SentenceRepo{NewRepo(db)} }

const sentenceCols = "id, project_id, position, text, translation, paragraph_break, created_at, updated_at"

func (r *SentenceRepo) Create(ctx context.Context, s *domain.Sentence) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("sentences").
		Columns("project_id", "position", "text", "translation", "paragraph_break", "created_at", "updated_at").
		Values(s.ProjectID, s.Position, s.Text, s.Translation, s.ParagraphBreak, now.Format(time.RFC3339), now.Format(time.RFC3339))
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	s.ID = id
	s.CreatedAt = now
	s.UpdatedAt = now
	return nil
}

func (r *SentenceRepo) Get(ctx context.Context, id int64) (*domain.Sentence, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+sentenceCols+` FROM sentences WHERE id = ?`, id)
	s, err := scanSentence(row)
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

func (r *SentenceRepo) ListByProject(ctx context.Context, projectID int64) ([]*domain.Sentence, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+sentenceCols+` FROM sentences WHERE project_id = ? ORDER BY position`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Sentence
	for rows.Next() {
		s, err := scanSentence(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SentenceRepo) Update(ctx context.Context, s *domain.Sentence) error {
	now := time.Now().UTC()
	q := r.SQ.Update("sentences").
		Set("position", s.Position).
		Set("text", s.Text).
		Set("translation", s.Translation).
		Set("paragraph_break", s.ParagraphBreak).
		Set("updated_at", now.Format(time.RFC3339)).
		Where(sq.Eq{"id": s.ID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err == nil {
		s.UpdatedAt = now
	}
	return err
}

// SetText rewrites only the raw text, leaving translation and flags alone.
func (r *SentenceRepo) SetText(ctx context.Context, id int64, text string) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE sentences SET text = ?, updated_at = ? WHERE id = ?`, text, nowRFC3339(), id)
	return err
}

func (r *SentenceRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("sentences").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

// ShiftPositions opens (delta > 0) or closes (delta < 0) a gap in the
// display order. Sentence positions have no uniqueness constraint, so a
// single update is enough.
func (r *SentenceRepo) ShiftPositions(ctx context.Context, projectID int64, fromPos, delta int) error {
	_, err := r.DB.ExecContext(ctx,
		`UPDATE sentences SET position = position + ? WHERE project_id = ? AND position >= ?`,
		delta, projectID, fromPos)
	return err
}

func (r *SentenceRepo) CountByProject(ctx context.Context, projectID int64) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sentences WHERE project_id = ?`, projectID).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSentence(row rowScanner) (*domain.Sentence, error) {
	var s domain.Sentence
	var created, updated string
	if err := row.Scan(&s.ID, &s.ProjectID, &s.Position, &s.Text, &s.Translation,
		&s.ParagraphBreak, &created, &updated); err != nil {
		return nil, err
	}
	s.CreatedAt = parseRFC3339(created)
	s.UpdatedAt = parseRFC3339(updated)
	return &s, nil
}
