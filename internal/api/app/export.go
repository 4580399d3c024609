package app

import (
	"context"
	"encoding/base64"
	"sort"

	csvexp "wordhord/internal/adapters/exporter/csv"
	"wordhord/internal/adapters/exporter/docx"
	jsonexp "wordhord/internal/adapters/exporter/json"
	expreg "wordhord/internal/adapters/exporter/registry"
	"wordhord/internal/usecase/exporter"
	"wordhord/internal/usecase/jobs"
)

type ExportAPI struct {
	svc    *exporter.Service
	runner *jobs.Runner
}

func NewExportAPI(svc *exporter.Service, runner *jobs.Runner) *ExportAPI {
	return &ExportAPI{svc: svc, runner: runner}
}

type ExportRequest struct {
	ProjectID int64  `json:"project_id"`
	Format    string `json:"format"`
	// Range selects sentences 1-based, e.g. "1,4-9"; empty exports all
	Range string `json:"range"`
}

type ExportResponse struct {
	Filename   string `json:"filename"`
	ContentB64 string `json:"content_b64"`
	Sentences  int    `json:"sentences"`
}

// Download renders the export in-process and hands the bytes back, for the
// save-file dialog path.
func (a *ExportAPI) Download(req ExportRequest) (ExportResponse, error) {
	ctx := context.Background()
	res, err := a.svc.Export(ctx, exporter.ExportArgs{
		ProjectID: req.ProjectID,
		Format:    req.Format,
		Range:     req.Range,
	})
	if err != nil {
		return ExportResponse{}, err
	}
	return ExportResponse{
		Filename:   res.Filename,
		ContentB64: base64.StdEncoding.EncodeToString(res.Content),
		Sentences:  res.Sentences,
	}, nil
}

type StartExportRequest struct {
	ProjectID int64  `json:"project_id"`
	Format    string `json:"format"`
	Range     string `json:"range"`
	// OutPath may be a file, a directory, or empty for the suggested name
	OutPath string `json:"out_path"`
}

// Start queues an export job that writes straight to disk, for large
// projects where shuttling bytes through the front end is wasteful.
func (a *ExportAPI) Start(req StartExportRequest) (StartJobResponse, error) {
	ctx := context.Background()
	jid, err := a.runner.StartExport(ctx, jobs.ExportParams{
		ProjectID: req.ProjectID,
		Format:    req.Format,
		Range:     req.Range,
		OutPath:   req.OutPath,
	})
	if err != nil {
		return StartJobResponse{}, err
	}
	return StartJobResponse{JobID: jid}, nil
}

func (a *ExportAPI) Formats() []string {
	fs := a.svc.Reg.Formats()
	sort.Strings(fs)
	return fs
}

// Helper to create the default exporter registry for wiring.
func NewDefaultExporterRegistry() *expreg.Registry {
	reg := expreg.New()
	reg.Register(jsonexp.New())
	reg.Register(csvexp.New())
	reg.Register(docx.New())
	return reg
}
