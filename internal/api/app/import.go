package app

import (
	"context"
	"encoding/base64"
	"sort"

	"wordhord/internal/adapters/importer/htmlpage"
	"wordhord/internal/adapters/importer/plaintext"
	impreg "wordhord/internal/adapters/importer/registry"
	"wordhord/internal/adapters/importer/teixml"
	"wordhord/internal/usecase/jobs"
)

type ImportAPI struct {
	runner *jobs.Runner
	reg    *impreg.Registry
}

func NewImportAPI(runner *jobs.Runner, reg *impreg.Registry) *ImportAPI {
	return &ImportAPI{runner: runner, reg: reg}
}

type StartImportRequest struct {
	ProjectName string `json:"project_name"`
	Source      string `json:"source"`
	Format      string `json:"format"`
	// ContentB64 is the base64-encoded source file
	ContentB64 string `json:"content_b64"`
}

type StartJobResponse struct {
	JobID int64 `json:"job_id"`
}

// Start queues a text import job; progress arrives over job events.
func (a *ImportAPI) Start(req StartImportRequest) (StartJobResponse, error) {
	ctx := context.Background()
	b, err := base64.StdEncoding.DecodeString(req.ContentB64)
	if err != nil {
		return StartJobResponse{}, err
	}
	jid, err := a.runner.StartImport(ctx, jobs.ImportParams{
		ProjectName: req.ProjectName,
		Source:      req.Source,
		Format:      req.Format,
		Content:     b,
	})
	if err != nil {
		return StartJobResponse{}, err
	}
	return StartJobResponse{JobID: jid}, nil
}

type StartImportProjectRequest struct {
	Source     string `json:"source"`
	ContentB64 string `json:"content_b64"`
}

// StartProject queues an interchange-file import that rebuilds a previously
// exported project with all its annotations.
func (a *ImportAPI) StartProject(req StartImportProjectRequest) (StartJobResponse, error) {
	ctx := context.Background()
	b, err := base64.StdEncoding.DecodeString(req.ContentB64)
	if err != nil {
		return StartJobResponse{}, err
	}
	jid, err := a.runner.StartImportProject(ctx, jobs.ImportProjectParams{Source: req.Source, Content: b})
	if err != nil {
		return StartJobResponse{}, err
	}
	return StartJobResponse{JobID: jid}, nil
}

func (a *ImportAPI) Formats() []string {
	fs := a.reg.Formats()
	sort.Strings(fs)
	return fs
}

// Helper to create the default importer registry for wiring.
func NewDefaultImporterRegistry() *impreg.Registry {
	reg := impreg.New()
	reg.Register(plaintext.New())
	reg.Register(teixml.New())
	reg.Register(htmlpage.New())
	return reg
}
