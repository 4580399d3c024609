package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"wordhord/internal/domain"
)

type JobRepo struct{ *Repo }

func NewJobRepo(db Execer) *JobRepo { return &JobRepo{NewRepo(db)} }

const jobCols = "id, type, status, project_id, params_json, progress, total, error, created_at, updated_at"

func (r *JobRepo) Create(ctx context.Context, j *domain.Job) (int64, error) {
	now := nowRFC3339()
	if j.ParamsRaw == "" {
		j.ParamsRaw = "{}"
	}
	q := r.SQ.Insert("jobs").
		Columns("type", "status", "project_id", "params_json", "progress", "total", "error", "created_at", "updated_at").
		Values(j.Type, j.Status, j.ProjectID, j.ParamsRaw, j.Progress, j.Total, j.Error, now, now)
	sqlStr, args, _ := q.ToSql()
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	id, _ := res.LastInsertId()
	j.ID = id
	return id, nil
}

func (r *JobRepo) UpdateProgress(ctx context.Context, jobID int64, done, total int, status string) error {
	q := r.SQ.Update("jobs").
		Set("progress", done).
		Set("total", total).
		Set("status", status).
		Set("updated_at", nowRFC3339()).
		Where(sq.Eq{"id": jobID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *JobRepo) SetError(ctx context.Context, jobID int64, errMsg string) error {
	q := r.SQ.Update("jobs").
		Set("status", "failed").
		Set("error", errMsg).
		Set("updated_at", nowRFC3339()).
		Where(sq.Eq{"id": jobID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *JobRepo) AddLog(ctx context.Context, jl *domain.JobLog) error {
	q := r.SQ.Insert("job_logs").Columns("job_id", "ts", "level", "message").
		Values(jl.JobID, nowRFC3339(), jl.Level, jl.Message)
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *JobRepo) Get(ctx context.Context, jobID int64) (*domain.Job, error) {
	q := r.SQ.Select(jobCols).From("jobs").Where(sq.Eq{"id": jobID}).Limit(1)
	sqlStr, args, _ := q.ToSql()
	row := r.DB.QueryRowContext(ctx, sqlStr, args...)
	j, err := scanJob(row)
	if err != nil {
		return nil, notFound(err)
	}
	return j, nil
}

func (r *JobRepo) List(ctx context.Context, limit int) ([]*domain.Job, error) {
	if limit <= 0 {
		limit = 50
	}
	q := r.SQ.Select(jobCols).From("jobs").OrderBy("id DESC").Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *JobRepo) ListLogs(ctx context.Context, jobID int64, limit int) ([]*domain.JobLog, error) {
	if limit <= 0 {
		limit = 200
	}
	q := r.SQ.Select("id", "job_id", "ts", "level", "message").From("job_logs").
		Where(sq.Eq{"job_id": jobID}).OrderBy("id DESC").Limit(uint64(limit))
	sqlStr, args, _ := q.ToSql()
	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.JobLog
	for rows.Next() {
		var jl domain.JobLog
		var ts string
		if err := rows.Scan(&jl.ID, &jl.JobID, &ts, &jl.Level, &jl.Message); err != nil {
			return nil, err
		}
		jl.Time = parseRFC3339(ts)
		out = append(out, &jl)
	}
	// reverse to ascending
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}

func (r *JobRepo) Delete(ctx context.Context, jobID int64) error {
	// Logs go with the job via FK cascade.
	q := r.SQ.Delete("jobs").Where(sq.Eq{"id": jobID})
	sqlStr, args, _ := q.ToSql()
	_, err := r.DB.ExecContext(ctx, sqlStr, args...)
	return err
}

func scanJob(row rowScanner) (*domain.Job, error) {
	var j domain.Job
	var proj sql.NullInt64
	var created, updated string
	if err := row.Scan(&j.ID, &j.Type, &j.Status, &proj, &j.ParamsRaw, &j.Progress,
		&j.Total, &j.Error, &created, &updated); err != nil {
		return nil, err
	}
	if proj.Valid {
		v := proj.Int64
		j.ProjectID = &v
	}
	j.CreatedAt = parseRFC3339(created)
	j.UpdatedAt = parseRFC3339(updated)
	return &j, nil
}
