// Package jobs runs imports, exports and backups in the background,
// recording progress and logs on job rows and emitting events as it goes.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/backup"
	"wordhord/internal/usecase/exporter"
	"wordhord/internal/usecase/importer"
)

// jobTimeout caps how long any single background job may run.
const jobTimeout = 10 * time.Minute

// Deps collects everything the runner drives. MarkDirty, when set, is called
// after a job mutates the project database so autosave picks it up;
// OnJobStart is the metrics hook.
type Deps struct {
	Jobs       ports.JobRepository
	Importer   *importer.Service
	Exporter   *exporter.Service
	Backups    *backup.Service
	MarkDirty  func()
	OnJobStart func(jobType string)
}

type Runner struct {
	d      Deps
	log    zerolog.Logger
	mu     sync.Mutex
	active map[int64]context.CancelFunc
	em     EventEmitter
}

func NewRunner(d Deps, log zerolog.Logger) *Runner {
	return &Runner{d: d, log: log, active: map[int64]context.CancelFunc{}}
}

// EventEmitter fans job lifecycle events out to connected clients.
type EventEmitter interface {
	Emit(name string, payload any)
}

func (r *Runner) SetEmitter(em EventEmitter) { r.em = em }

type ImportParams struct {
	ProjectName string `json:"project_name"`
	Source      string `json:"source"`
	Format      string `json:"format"`
	Content     []byte `json:"-"` // raw text never lands on the job row
}

// StartImport queues a text import and returns the job id immediately.
func (r *Runner) StartImport(ctx context.Context, p ImportParams) (int64, error) {
	paramsJSON, _ := json.Marshal(p)
	job := &domain.Job{Type: "import_text", Status: "queued", ParamsRaw: string(paramsJSON)}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return 0, err
	}
	_ = r.d.Jobs.UpdateProgress(ctx, id, 0, 0, "running")
	r.started(job.Type)
	r.emit("job.started", map[string]any{"job_id": id, "type": job.Type})
	r.jobLog(ctx, id, "info", fmt.Sprintf("import started: source=%s format=%s bytes=%d", p.Source, p.Format, len(p.Content)))
	cctx, cancel := context.WithCancel(context.Background())
	r.track(id, cancel)
	go r.runImport(cctx, id, p)
	return id, nil
}

func (r *Runner) runImport(ctx context.Context, jobID int64, p ImportParams) {
	defer r.untrack(jobID)
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	bg := context.Background()

	res, err := r.d.Importer.Import(ctx, importer.ImportArgs{
		ProjectName: p.ProjectName,
		Source:      p.Source,
		Format:      p.Format,
		Content:     p.Content,
	})
	if err != nil {
		r.fail(jobID, err)
		return
	}
	if r.d.MarkDirty != nil {
		r.d.MarkDirty()
	}
	r.jobLog(bg, jobID, "info", fmt.Sprintf("imported %d sentences, %d tokens", res.Sentences, res.Tokens))
	_ = r.d.Jobs.UpdateProgress(bg, jobID, res.Sentences, res.Sentences, "done")
	r.emit("job.progress", map[string]any{"job_id": jobID, "done": res.Sentences, "total": res.Sentences, "status": "done", "project_id": res.ProjectID})
}

type ImportProjectParams struct {
	Source  string `json:"source"`
	Content []byte `json:"-"`
}

// StartImportProject queues an interchange-file import, rebuilding a project
// with its annotations, idioms and notes.
func (r *Runner) StartImportProject(ctx context.Context, p ImportProjectParams) (int64, error) {
	paramsJSON, _ := json.Marshal(p)
	job := &domain.Job{Type: "import_project", Status: "queued", ParamsRaw: string(paramsJSON)}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return 0, err
	}
	_ = r.d.Jobs.UpdateProgress(ctx, id, 0, 0, "running")
	r.started(job.Type)
	r.emit("job.started", map[string]any{"job_id": id, "type": job.Type})
	cctx, cancel := context.WithCancel(context.Background())
	r.track(id, cancel)
	go r.runImportProject(cctx, id, p)
	return id, nil
}

func (r *Runner) runImportProject(ctx context.Context, jobID int64, p ImportProjectParams) {
	defer r.untrack(jobID)
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	bg := context.Background()

	res, err := r.d.Importer.ImportProject(ctx, p.Content)
	if err != nil {
		r.fail(jobID, err)
		return
	}
	if r.d.MarkDirty != nil {
		r.d.MarkDirty()
	}
	r.jobLog(bg, jobID, "info", fmt.Sprintf("restored project %d: %d sentences, %d tokens", res.ProjectID, res.Sentences, res.Tokens))
	_ = r.d.Jobs.UpdateProgress(bg, jobID, res.Sentences, res.Sentences, "done")
	r.emit("job.progress", map[string]any{"job_id": jobID, "done": res.Sentences, "total": res.Sentences, "status": "done", "project_id": res.ProjectID})
}

type ExportParams struct {
	ProjectID int64  `json:"project_id"`
	Format    string `json:"format"`
	Range     string `json:"range,omitempty"`
	OutPath   string `json:"out_path"` // file, directory, or empty for the suggested name
}

// StartExport queues an export of the project to disk.
func (r *Runner) StartExport(ctx context.Context, p ExportParams) (int64, error) {
	paramsJSON, _ := json.Marshal(p)
	job := &domain.Job{Type: "export_project", Status: "queued", ProjectID: &p.ProjectID, ParamsRaw: string(paramsJSON)}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return 0, err
	}
	_ = r.d.Jobs.UpdateProgress(ctx, id, 0, 0, "running")
	r.started(job.Type)
	r.emit("job.started", map[string]any{"job_id": id, "type": job.Type, "project_id": p.ProjectID})
	cctx, cancel := context.WithCancel(context.Background())
	r.track(id, cancel)
	go r.runExport(cctx, id, p)
	return id, nil
}

func (r *Runner) runExport(ctx context.Context, jobID int64, p ExportParams) {
	defer r.untrack(jobID)
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	bg := context.Background()

	res, err := r.d.Exporter.Export(ctx, exporter.ExportArgs{ProjectID: p.ProjectID, Format: p.Format, Range: p.Range})
	if err != nil {
		r.fail(jobID, err)
		return
	}
	out := p.OutPath
	if out == "" {
		out = res.Filename
	} else if st, err := os.Stat(out); err == nil && st.IsDir() {
		out = filepath.Join(out, res.Filename)
	}
	if err := os.WriteFile(out, res.Content, 0o644); err != nil {
		r.fail(jobID, fmt.Errorf("write %s: %w", out, err))
		return
	}
	r.jobLog(bg, jobID, "info", fmt.Sprintf("exported %d sentences to %s", res.Sentences, out))
	_ = r.d.Jobs.UpdateProgress(bg, jobID, res.Sentences, res.Sentences, "done")
	r.emit("job.progress", map[string]any{"job_id": jobID, "done": res.Sentences, "total": res.Sentences, "status": "done", "path": out})
}

// StartBackup queues a database backup.
func (r *Runner) StartBackup(ctx context.Context) (int64, error) {
	job := &domain.Job{Type: "backup", Status: "queued"}
	id, err := r.d.Jobs.Create(ctx, job)
	if err != nil {
		return 0, err
	}
	_ = r.d.Jobs.UpdateProgress(ctx, id, 0, 1, "running")
	r.started(job.Type)
	r.emit("job.started", map[string]any{"job_id": id, "type": job.Type})
	cctx, cancel := context.WithCancel(context.Background())
	r.track(id, cancel)
	go r.runBackup(cctx, id)
	return id, nil
}

func (r *Runner) runBackup(ctx context.Context, jobID int64) {
	defer r.untrack(jobID)
	ctx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()
	bg := context.Background()

	info, err := r.d.Backups.Create(ctx)
	if err != nil {
		r.fail(jobID, err)
		return
	}
	r.jobLog(bg, jobID, "info", fmt.Sprintf("backup %s (%d bytes)", filepath.Base(info.Path), info.SizeBytes))
	_ = r.d.Jobs.UpdateProgress(bg, jobID, 1, 1, "done")
	r.emit("job.progress", map[string]any{"job_id": jobID, "done": 1, "total": 1, "status": "done", "path": info.Path, "checksum": info.Checksum})
}

// Cancel stops a running job. Reports whether the job was active.
func (r *Runner) Cancel(jobID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.active[jobID]; ok {
		cancel()
		delete(r.active, jobID)
		return true
	}
	return false
}

func (r *Runner) track(id int64, cancel context.CancelFunc) {
	r.mu.Lock()
	r.active[id] = cancel
	r.mu.Unlock()
}

func (r *Runner) untrack(id int64) {
	r.mu.Lock()
	if cancel, ok := r.active[id]; ok {
		cancel()
		delete(r.active, id)
	}
	r.mu.Unlock()
}

// fail records the terminal state with a background context, since the job
// context is usually the thing that just died.
func (r *Runner) fail(jobID int64, err error) {
	bg := context.Background()
	if errors.Is(err, context.Canceled) {
		_ = r.d.Jobs.UpdateProgress(bg, jobID, 0, 0, "canceled")
		r.emit("job.progress", map[string]any{"job_id": jobID, "status": "canceled"})
		return
	}
	r.log.Error().Err(err).Int64("job_id", jobID).Msg("job failed")
	r.jobLog(bg, jobID, "error", err.Error())
	_ = r.d.Jobs.SetError(bg, jobID, err.Error())
	r.emit("job.progress", map[string]any{"job_id": jobID, "status": "failed", "error": err.Error()})
}

func (r *Runner) started(jobType string) {
	if r.d.OnJobStart != nil {
		r.d.OnJobStart(jobType)
	}
}

func (r *Runner) emit(name string, payload any) {
	if r.em != nil {
		r.em.Emit(name, payload)
	}
}

func (r *Runner) jobLog(ctx context.Context, jobID int64, level, message string) {
	_ = r.d.Jobs.AddLog(ctx, &domain.JobLog{JobID: jobID, Level: level, Message: message})
	r.emit("job.log", map[string]any{"job_id": jobID, "level": level, "message": message, "ts": time.Now().UTC().Format(time.RFC3339)})
}
