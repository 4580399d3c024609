package sqlite

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type PresetRepo struct{ *Repo }

func NewPresetRepo(db Execer) *PresetRepo { return &PresetRepo{NewRepo(db)} }

func (r *PresetRepo) Upsert(ctx context.Context, p *domain.Preset) error {
	now := time.Now().UTC()
	if p.ValuesRaw == "" {
		p.ValuesRaw = "{}"
	}
	q := r.SQ.Insert("presets").Columns("name", "values_json", "sort_order", "updated_at").
		Values(p.Name, p.ValuesRaw, p.SortOrder, now.Format(time.RFC3339)).
		Suffix(`ON CONFLICT(name) DO UPDATE SET values_json = excluded.values_json,
			sort_order = excluded.sort_order, updated_at = excluded.updated_at`)
	sqlStr, args, _ := q.ToSql()
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return err
	}
	row := r.DB.QueryRowContext(ctx, `SELECT id FROM presets WHERE name = ?`, p.Name)
	if err := row.Scan(&p.ID); err != nil {
		return err
	}
	p.UpdatedAt = now
	return nil
}

func (r *PresetRepo) Get(ctx context.Context, id int64) (*domain.Preset, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, name, values_json, sort_order, updated_at FROM presets WHERE id = ?`, id)
	var p domain.Preset
	var updated string
	if err := row.Scan(&p.ID, &p.Name, &p.ValuesRaw, &p.SortOrder, &updated); err != nil {
		return nil, notFound(err)
	}
	p.UpdatedAt = parseRFC3339(updated)
	return &p, nil
}

func (r *PresetRepo) List(ctx context.Context) ([]*domain.Preset, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, name, values_json, sort_order, updated_at FROM presets ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Preset
	for rows.Next() {
		var p domain.Preset
		var updated string
		if err := rows.Scan(&p.ID, &p.Name, &p.ValuesRaw, &p.SortOrder, &updated); err != nil {
			return nil, err
		}
		p.UpdatedAt = parseRFC3339(updated)
		out = append(out, &p)
	}
	return out, rows.Err()
}

func (r *PresetRepo) Delete(ctx context.Context, id int64) error {
	q := r.SQ.Delete("presets").Where(sq.Eq{"id": id})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}
