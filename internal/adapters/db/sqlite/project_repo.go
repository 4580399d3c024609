package sqlite

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type ProjectRepo struct{ *Repo }

func NewProjectRepo(db Execer) *ProjectRepo { return &ProjectRepo{NewRepo(db)} }

func (r *ProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	q := r.SQ.Insert("projects").Columns("name", "source", "created_at", "updated_at").
		Values(p.Name, p.Source, now.Format(time.RFC3339), now.Format(time.RFC3339))
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	id, _ := res.LastInsertId()
	p.ID = id
	p.CreatedAt = now
	p.UpdatedAt = now
	return nil
}

func (r *ProjectRepo) Get(ctx context.Context, id int64) (*domain.Project, error) {
	q := r.SQ.Select("id", "name", "source", "created_at", "updated_at").
		From("projects").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	var p domain.Project
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Source, &created, &updated); err != nil {
		return nil, notFound(err)
	}
	p.CreatedAt = parseRFC3339(created)
	p.UpdatedAt = parseRFC3339(updated)
	return &p, nil
}

func (r *ProjectRepo) List(ctx context.Context) ([]*domain.Project, error) {
	q := r.SQ.Select("id", "name", "source", "created_at", "updated_at").
		From("projects").OrderBy("id DESC")
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Project
	for rows.Next() {
		var p domain.Project
		var created, updated string
		if err := rows.Scan(&p.ID, &p.Name, &p.Source, &created, &updated); err != nil {
			return nil, err
		}
		p.CreatedAt = parseRFC3339(created)
		p.UpdatedAt = parseRFC3339(updated)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *ProjectRepo) Update(ctx context.Context, p *domain.Project) error {
	now := time.Now().UTC()
	q := r.SQ.Update("projects").
		Set("name", p.Name).
		Set("source", p.Source).
		Set("updated_at", now.Format(time.RFC3339)).
		Where(sq.Eq{"id": p.ID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err == nil {
		p.UpdatedAt = now
	}
	return err
}

func (r *ProjectRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("projects").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
