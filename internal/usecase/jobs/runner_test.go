package jobs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"wordhord/internal/adapters/db/sqlite"
	projjson "wordhord/internal/adapters/exporter/json"
	expreg "wordhord/internal/adapters/exporter/registry"
	"wordhord/internal/adapters/importer/plaintext"
	impreg "wordhord/internal/adapters/importer/registry"
	"wordhord/internal/domain"
	"wordhord/internal/usecase/backup"
	"wordhord/internal/usecase/exporter"
	"wordhord/internal/usecase/importer"
)

type testEmitter struct {
	mu     sync.Mutex
	events []string
}

func (e *testEmitter) Emit(name string, payload any) {
	e.mu.Lock()
	e.events = append(e.events, name)
	e.mu.Unlock()
}

func (e *testEmitter) saw(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, ev := range e.events {
		if ev == name {
			return true
		}
	}
	return false
}

type fixture struct {
	runner  *Runner
	jobs    *sqlite.JobRepo
	imports *importer.Service
	backups *backup.Service
	emitter *testEmitter
	dirty   atomic.Int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Init(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	ireg := impreg.New()
	ireg.Register(plaintext.New())
	imports := importer.New(sqlite.NewProjectRepo(db), sqlite.NewStore(db), ireg, zerolog.Nop())

	ereg := expreg.New()
	ereg.Register(projjson.New())
	exports := exporter.New(sqlite.NewProjectRepo(db), sqlite.NewSentenceRepo(db),
		sqlite.NewTokenRepo(db), sqlite.NewAnnotationRepo(db),
		sqlite.NewIdiomRepo(db), sqlite.NewNoteRepo(db), ereg, zerolog.Nop())

	f := &fixture{
		jobs:    sqlite.NewJobRepo(db),
		imports: imports,
		backups: backup.New(sqlite.NewMaintenance(db), t.TempDir(), 0, "test", zerolog.Nop()),
		emitter: &testEmitter{},
	}
	f.runner = NewRunner(Deps{
		Jobs:      f.jobs,
		Importer:  imports,
		Exporter:  exports,
		Backups:   f.backups,
		MarkDirty: func() { f.dirty.Add(1) },
	}, zerolog.Nop())
	f.runner.SetEmitter(f.emitter)
	return f
}

func (f *fixture) waitJob(t *testing.T, id int64) *domain.Job {
	t.Helper()
	ctx := context.Background()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, err := f.jobs.Get(ctx, id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		switch j.Status {
		case "done", "failed", "canceled":
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job did not finish in time")
	return nil
}

func TestImportJobCompletes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.runner.StartImport(ctx, ImportParams{
		ProjectName: "Wanderer",
		Format:      "plaintext",
		Content:     []byte("Oft him ānhaga āre gebīdeð. Metudes miltse."),
	})
	if err != nil {
		t.Fatalf("start import: %v", err)
	}

	j := f.waitJob(t, id)
	if j.Status != "done" {
		t.Fatalf("job status = %s (%s), want done", j.Status, j.Error)
	}
	if j.Progress != 2 || j.Total != 2 {
		t.Errorf("progress = %d/%d, want 2/2", j.Progress, j.Total)
	}
	if f.dirty.Load() != 1 {
		t.Errorf("dirty marks = %d, want 1", f.dirty.Load())
	}
	if !f.emitter.saw("job.started") || !f.emitter.saw("job.progress") {
		t.Errorf("missing lifecycle events, got %v", f.emitter.events)
	}
	logs, err := f.jobs.ListLogs(ctx, id, 10)
	if err != nil || len(logs) == 0 {
		t.Errorf("no job logs recorded: %v", err)
	}
}

func TestImportJobFailureRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.runner.StartImport(ctx, ImportParams{Format: "runes", Content: []byte("x")})
	if err != nil {
		t.Fatalf("start import: %v", err)
	}
	j := f.waitJob(t, id)
	if j.Status != "failed" {
		t.Fatalf("job status = %s, want failed", j.Status)
	}
	if !strings.Contains(j.Error, "unsupported format") {
		t.Errorf("job error = %q", j.Error)
	}
	if f.dirty.Load() != 0 {
		t.Errorf("dirty marks = %d, want 0 on failure", f.dirty.Load())
	}
}

func TestExportJobWritesFile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.imports.Import(ctx, importer.ImportArgs{
		ProjectName: "Seafarer",
		Format:      "plaintext",
		Content:     []byte("Mæg ic be mē sylfum sōðgied wrecan."),
	})
	if err != nil {
		t.Fatalf("seed import: %v", err)
	}

	outDir := t.TempDir()
	id, err := f.runner.StartExport(ctx, ExportParams{ProjectID: res.ProjectID, Format: "json", OutPath: outDir})
	if err != nil {
		t.Fatalf("start export: %v", err)
	}
	j := f.waitJob(t, id)
	if j.Status != "done" {
		t.Fatalf("job status = %s (%s), want done", j.Status, j.Error)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Seafarer.json"))
	if err != nil {
		t.Fatalf("exported file missing: %v", err)
	}
	doc, err := projjson.Decode(data)
	if err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if doc.Title != "Seafarer" || len(doc.Sentences) != 1 {
		t.Errorf("export = %q with %d sentences", doc.Title, len(doc.Sentences))
	}
}

func TestImportProjectJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	seed, err := f.imports.Import(ctx, importer.ImportArgs{
		ProjectName: "Deor",
		Format:      "plaintext",
		Content:     []byte("Þæs oferēode, þisses swā mæg."),
	})
	if err != nil {
		t.Fatalf("seed import: %v", err)
	}
	exp, err := f.runner.d.Exporter.Export(ctx, exporter.ExportArgs{ProjectID: seed.ProjectID, Format: "json"})
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	id, err := f.runner.StartImportProject(ctx, ImportProjectParams{Source: "deor.json", Content: exp.Content})
	if err != nil {
		t.Fatalf("start import project: %v", err)
	}
	j := f.waitJob(t, id)
	if j.Status != "done" {
		t.Fatalf("job status = %s (%s), want done", j.Status, j.Error)
	}
	if j.Progress != 1 {
		t.Errorf("progress = %d, want 1 sentence", j.Progress)
	}
}

func TestBackupJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.runner.StartBackup(ctx)
	if err != nil {
		t.Fatalf("start backup: %v", err)
	}
	j := f.waitJob(t, id)
	if j.Status != "done" {
		t.Fatalf("job status = %s (%s), want done", j.Status, j.Error)
	}
	list, err := f.backups.List(ctx)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("got %d backups, want 1", len(list))
	}
}

func TestCancelUnknownJob(t *testing.T) {
	f := newFixture(t)
	if f.runner.Cancel(999) {
		t.Error("Cancel reported an inactive job as canceled")
	}
}
