// Command wordhord runs the annotation workbench: a localhost server the
// desktop front end talks to, plus offline project, import/export and
// backup operations.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"wordhord/internal/adapters/db/sqlite"
	"wordhord/internal/api/app"
	"wordhord/internal/api/server"
	"wordhord/internal/config"
	"wordhord/internal/domain"
	"wordhord/internal/logging"
	"wordhord/internal/metrics"
	"wordhord/internal/usecase/autosave"
	"wordhord/internal/usecase/backup"
	"wordhord/internal/usecase/commands"
	"wordhord/internal/usecase/exporter"
	"wordhord/internal/usecase/importer"
	"wordhord/internal/usecase/jobs"
	"wordhord/internal/usecase/reconciler"
)

const appVersion = "0.1.0"

var cli struct {
	Config   string `help:"Path to the config file." type:"path"`
	DataDir  string `help:"Override the data directory." type:"path"`
	LogLevel string `help:"Override the log level (debug, info, warn, error)."`
	Pretty   bool   `help:"Human-readable log output."`

	Serve   ServeCmd     `cmd:"" help:"Start the workbench server."`
	Project ProjectGroup `cmd:"" help:"Project operations."`
	Import  ImportCmd    `cmd:"" help:"Import a text into a new project."`
	Export  ExportCmd    `cmd:"" help:"Export a project to a file."`
	Backup  BackupCmd    `cmd:"" help:"Archive the database."`
	Restore RestoreCmd   `cmd:"" help:"Replace the database with an archived snapshot."`
	Version VersionCmd   `cmd:"" help:"Print version information."`
}

// workspace is the shared bootstrap every command goes through: config,
// logger and data directory.
type workspace struct {
	cfg config.Config
	log zerolog.Logger
}

func openWorkspace() (*workspace, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return nil, err
	}
	if cli.DataDir != "" {
		cfg.DataDir = cli.DataDir
	}
	if cli.LogLevel != "" {
		cfg.LogLevel = cli.LogLevel
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty || cli.Pretty})
	return &workspace{cfg: cfg, log: log}, nil
}

func (ws *workspace) openDB() (*sql.DB, error) {
	db, err := sqlite.Init(ws.cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

type ServeCmd struct {
	Listen string `help:"Override the listen address."`
}

func (c *ServeCmd) Run() error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	cfg, log := ws.cfg, ws.log
	if c.Listen != "" {
		cfg.Listen = c.Listen
	}

	db, err := ws.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	projRepo := sqlite.NewProjectRepo(db)
	sentRepo := sqlite.NewSentenceRepo(db)
	tokRepo := sqlite.NewTokenRepo(db)
	annRepo := sqlite.NewAnnotationRepo(db)
	idiomRepo := sqlite.NewIdiomRepo(db)
	noteRepo := sqlite.NewNoteRepo(db)
	presetRepo := sqlite.NewPresetRepo(db)
	jobRepo := sqlite.NewJobRepo(db)
	settingsRepo := sqlite.NewSettingsRepo(db)
	maint := sqlite.NewMaintenance(db)
	store := sqlite.NewStore(db)

	mgr := commands.NewManager(cfg.UndoLimit, logging.Component(log, "commands"))
	rec := reconciler.New(store, logging.Component(log, "reconciler"))

	impSvc := importer.New(projRepo, store, app.NewDefaultImporterRegistry(),
		logging.Component(log, "importer"))
	expSvc := exporter.New(projRepo, sentRepo, tokRepo, annRepo, idiomRepo, noteRepo,
		app.NewDefaultExporterRegistry(), logging.Component(log, "exporter"))
	bakSvc := backup.New(maint, cfg.BackupDir(), cfg.Backup.Keep, appVersion,
		logging.Component(log, "backup"))

	saver := autosave.New(maint, settingsRepo, mgr, logging.Component(log, "autosave"))
	saver.Backups = bakSvc
	if d := cfg.Autosave.Delay.Std(); d > 0 {
		saver.Delay = d
	}
	saver.BackupEvery = cfg.Autosave.BackupEvery.Std()

	promReg := prometheus.NewRegistry()
	m := metrics.New(promReg)
	saver.OnFlush = m.AutosaveFlushesTotal.Inc
	hub := server.NewHub(m, logging.Component(log, "ws"))
	go hub.Run()

	runner := jobs.NewRunner(jobs.Deps{
		Jobs:       jobRepo,
		Importer:   impSvc,
		Exporter:   expSvc,
		Backups:    bakSvc,
		MarkDirty:  saver.MarkDirty,
		OnJobStart: func(t string) { m.JobsStartedTotal.WithLabelValues(t).Inc() },
	}, logging.Component(log, "jobs"))
	runner.SetEmitter(hub)

	hooks := app.Hooks{Dirty: saver.MarkDirty, Metrics: m, Events: hub}
	run := app.NewCommander(mgr, hooks)

	deps := server.Deps{
		Projects:    app.NewProjectAPI(projRepo, sentRepo, run),
		Sentences:   app.NewSentenceAPI(sentRepo, tokRepo, annRepo, idiomRepo, noteRepo, rec, run),
		Tokens:      app.NewTokenAPI(tokRepo),
		Annotations: app.NewAnnotationAPI(annRepo, run),
		Idioms:      app.NewIdiomAPI(idiomRepo, tokRepo, annRepo, store, run),
		Notes:       app.NewNoteAPI(noteRepo, run),
		Presets:     app.NewPresetAPI(presetRepo, annRepo, run),
		History:     app.NewCommandAPI(run),
		Imports:     app.NewImportAPI(runner, app.NewDefaultImporterRegistry()),
		Exports:     app.NewExportAPI(expSvc, runner),
		Jobs:        app.NewJobsAPI(runner, jobRepo),
		Backups:     app.NewBackupAPI(bakSvc, runner),
		Workspace:   app.NewWorkspaceAPI(saver, settingsRepo, appVersion, cfg.DataDir, hooks),
	}
	srv := server.New(deps, hub, m, promReg, logging.Component(log, "http"))

	saver.Start()
	defer saver.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("version", appVersion).Str("data_dir", cfg.DataDir).Msg("wordhord starting")
	return srv.ListenAndServe(cfg.Listen)
}

type ProjectGroup struct {
	New  ProjectNewCmd  `cmd:"" help:"Create an empty project."`
	List ProjectListCmd `cmd:"" help:"List projects."`
}

type ProjectNewCmd struct {
	Name   string `arg:"" help:"Project name."`
	Source string `help:"Provenance, e.g. edition or URL."`
}

func (c *ProjectNewCmd) Run() error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	db, err := ws.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	p := &domain.Project{Name: c.Name, Source: c.Source}
	if err := sqlite.NewProjectRepo(db).Create(context.Background(), p); err != nil {
		return err
	}
	fmt.Printf("created project %d: %s\n", p.ID, p.Name)
	return nil
}

type ProjectListCmd struct{}

func (c *ProjectListCmd) Run() error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	db, err := ws.openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	ctx := context.Background()

	ps, err := sqlite.NewProjectRepo(db).List(ctx)
	if err != nil {
		return err
	}
	sentRepo := sqlite.NewSentenceRepo(db)
	for _, p := range ps {
		n, err := sentRepo.CountByProject(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t%s\t%d sentences\t%s\n", p.ID, p.Name, n, p.CreatedAt.Format("2006-01-02"))
	}
	return nil
}

type ImportCmd struct {
	File   string `arg:"" help:"Source file." type:"existingfile"`
	Name   string `help:"Project name; defaults to the title found in the source."`
	Source string `help:"Provenance, e.g. edition or URL."`
	Format string `help:"plaintext, teixml or htmlpage; guessed from the extension when empty."`
}

func (c *ImportCmd) Run() error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	db, err := ws.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	format := c.Format
	if format == "" {
		format = guessFormat(c.File)
	}

	svc := importer.New(sqlite.NewProjectRepo(db), sqlite.NewStore(db),
		app.NewDefaultImporterRegistry(), logging.Component(ws.log, "importer"))
	res, err := svc.Import(context.Background(), importer.ImportArgs{
		ProjectName: c.Name,
		Source:      c.Source,
		Format:      format,
		Content:     data,
	})
	if err != nil {
		return err
	}
	fmt.Printf("imported project %d: %d sentences, %d tokens\n",
		res.ProjectID, res.Sentences, res.Tokens)
	return nil
}

func guessFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xml", ".tei":
		return "teixml"
	case ".html", ".htm":
		return "htmlpage"
	default:
		return "plaintext"
	}
}

type ExportCmd struct {
	Project int64  `arg:"" help:"Project ID."`
	Format  string `default:"json" help:"json, csv or docx."`
	Range   string `help:"Sentence selection, e.g. \"1,4-9\"; empty exports all."`
	Out     string `help:"Output file or directory; defaults to the suggested name." type:"path"`
}

func (c *ExportCmd) Run() error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	db, err := ws.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	svc := exporter.New(sqlite.NewProjectRepo(db), sqlite.NewSentenceRepo(db),
		sqlite.NewTokenRepo(db), sqlite.NewAnnotationRepo(db), sqlite.NewIdiomRepo(db),
		sqlite.NewNoteRepo(db), app.NewDefaultExporterRegistry(),
		logging.Component(ws.log, "exporter"))
	res, err := svc.Export(context.Background(), exporter.ExportArgs{
		ProjectID: c.Project,
		Format:    c.Format,
		Range:     c.Range,
	})
	if err != nil {
		return err
	}

	out := c.Out
	if out == "" {
		out = res.Filename
	} else if fi, err := os.Stat(out); err == nil && fi.IsDir() {
		out = filepath.Join(out, res.Filename)
	}
	if err := os.WriteFile(out, res.Content, 0o644); err != nil {
		return err
	}
	fmt.Printf("exported %d sentences to %s\n", res.Sentences, out)
	return nil
}

type BackupCmd struct {
	List bool `help:"List archives instead of creating one."`
}

func (c *BackupCmd) Run() error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if c.List {
		svc := backup.New(nil, ws.cfg.BackupDir(), ws.cfg.Backup.Keep, appVersion,
			logging.Component(ws.log, "backup"))
		infos, err := svc.List(ctx)
		if err != nil {
			return err
		}
		for _, info := range infos {
			fmt.Printf("%s\t%s\t%d bytes\t%s\n",
				info.CreatedAt.Format(time.RFC3339), filepath.Base(info.Path),
				info.SizeBytes, info.ID)
		}
		return nil
	}

	db, err := ws.openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	svc := backup.New(sqlite.NewMaintenance(db), ws.cfg.BackupDir(), ws.cfg.Backup.Keep,
		appVersion, logging.Component(ws.log, "backup"))
	info, err := svc.Create(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("backup written: %s (%d bytes, blake3 %s)\n",
		info.Path, info.SizeBytes, info.Checksum[:16])
	return nil
}

type RestoreCmd struct {
	Archive string `arg:"" help:"Backup archive to restore." type:"existingfile"`
	Force   bool   `help:"Replace an existing database without asking."`
}

// Run swaps the database file, so the server must not be running.
func (c *RestoreCmd) Run() error {
	ws, err := openWorkspace()
	if err != nil {
		return err
	}
	dbPath := ws.cfg.DBPath()
	if _, err := os.Stat(dbPath); err == nil && !c.Force {
		return fmt.Errorf("%s exists; pass --force to replace it", dbPath)
	}

	svc := backup.New(nil, ws.cfg.BackupDir(), ws.cfg.Backup.Keep, appVersion,
		logging.Component(ws.log, "backup"))
	info, err := svc.Restore(context.Background(), c.Archive, dbPath)
	if err != nil {
		return err
	}
	fmt.Printf("restored %s (created %s, app %s)\n",
		dbPath, info.CreatedAt.Format(time.RFC3339), info.AppVersion)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("wordhord version %s\n", appVersion)
	return nil
}

func main() {
	ctx := kong.Parse(&cli,
		kong.Name("wordhord"),
		kong.Description("Annotation workbench for Old English texts."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}
