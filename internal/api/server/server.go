// Package server exposes the facades over localhost HTTP plus a WebSocket
// event stream, so any local front end can drive the workbench.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"wordhord/internal/api/app"
	"wordhord/internal/domain"
	"wordhord/internal/metrics"
)

// Deps collects every facade the routes dispatch to.
type Deps struct {
	Projects    *app.ProjectAPI
	Sentences   *app.SentenceAPI
	Tokens      *app.TokenAPI
	Annotations *app.AnnotationAPI
	Idioms      *app.IdiomAPI
	Notes       *app.NoteAPI
	Presets     *app.PresetAPI
	History     *app.CommandAPI
	Imports     *app.ImportAPI
	Exports     *app.ExportAPI
	Jobs        *app.JobsAPI
	Backups     *app.BackupAPI
	Workspace   *app.WorkspaceAPI
}

type Server struct {
	d        Deps
	hub      *Hub
	m        *metrics.Metrics
	gatherer prometheus.Gatherer
	log      zerolog.Logger
	http     *http.Server
}

// New builds the server around already-wired facades. gatherer feeds the
// /metrics endpoint and should be the registry the Metrics were created
// against; nil falls back to the default one.
func New(d Deps, hub *Hub, m *metrics.Metrics, gatherer prometheus.Gatherer, log zerolog.Logger) *Server {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{d: d, hub: hub, m: m, gatherer: gatherer, log: log}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.hub.ServeWS)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	mux.HandleFunc("GET /api/workspace", s.handleWorkspaceStatus)
	mux.HandleFunc("POST /api/workspace/save", s.handleSaveNow)
	mux.HandleFunc("GET /api/settings", s.handleSettingsAll)
	mux.HandleFunc("GET /api/settings/{key}", s.handleSettingGet)
	mux.HandleFunc("PUT /api/settings/{key}", s.handleSettingSet)

	mux.HandleFunc("GET /api/projects", s.handleProjectList)
	mux.HandleFunc("POST /api/projects", s.handleProjectCreate)
	mux.HandleFunc("GET /api/projects/{id}", s.handleProjectGet)
	mux.HandleFunc("PUT /api/projects/{id}", s.handleProjectUpdate)
	mux.HandleFunc("DELETE /api/projects/{id}", s.handleProjectDelete)
	mux.HandleFunc("GET /api/projects/{id}/sentences", s.handleSentenceList)

	mux.HandleFunc("GET /api/sentences/{id}", s.handleSentenceGet)
	mux.HandleFunc("PUT /api/sentences/{id}/text", s.handleSentenceEditText)
	mux.HandleFunc("PUT /api/sentences/{id}/translation", s.handleSentenceTranslation)
	mux.HandleFunc("POST /api/sentences/{id}/toggle-paragraph", s.handleToggleParagraph)
	mux.HandleFunc("GET /api/sentences/{id}/tokens", s.handleTokenList)
	mux.HandleFunc("GET /api/sentences/{id}/idioms", s.handleIdiomList)
	mux.HandleFunc("GET /api/sentences/{id}/notes", s.handleNoteList)

	mux.HandleFunc("GET /api/tokens/{id}/annotation", s.handleAnnotationGet)
	mux.HandleFunc("PUT /api/tokens/{id}/annotation", s.handleAnnotateToken)
	mux.HandleFunc("DELETE /api/tokens/{id}/annotation", s.handleAnnotationClear)

	mux.HandleFunc("POST /api/idioms", s.handleIdiomCreate)
	mux.HandleFunc("DELETE /api/idioms/{id}", s.handleIdiomDelete)
	mux.HandleFunc("PUT /api/idioms/{id}/annotation", s.handleAnnotateIdiom)

	mux.HandleFunc("POST /api/notes", s.handleNoteSet)
	mux.HandleFunc("DELETE /api/notes/{id}", s.handleNoteDelete)

	mux.HandleFunc("GET /api/presets", s.handlePresetList)
	mux.HandleFunc("POST /api/presets", s.handlePresetUpsert)
	mux.HandleFunc("DELETE /api/presets/{id}", s.handlePresetDelete)
	mux.HandleFunc("POST /api/presets/{id}/apply", s.handlePresetApply)

	mux.HandleFunc("GET /api/history", s.handleHistoryStatus)
	mux.HandleFunc("POST /api/undo", s.handleUndo)
	mux.HandleFunc("POST /api/redo", s.handleRedo)

	mux.HandleFunc("POST /api/import", s.handleImportStart)
	mux.HandleFunc("POST /api/import/project", s.handleImportProject)
	mux.HandleFunc("GET /api/import/formats", s.handleImportFormats)

	mux.HandleFunc("POST /api/export", s.handleExportDownload)
	mux.HandleFunc("POST /api/export/job", s.handleExportStart)
	mux.HandleFunc("GET /api/export/formats", s.handleExportFormats)

	mux.HandleFunc("GET /api/jobs", s.handleJobList)
	mux.HandleFunc("GET /api/jobs/{id}", s.handleJobGet)
	mux.HandleFunc("GET /api/jobs/{id}/logs", s.handleJobLogs)
	mux.HandleFunc("POST /api/jobs/{id}/cancel", s.handleJobCancel)
	mux.HandleFunc("DELETE /api/jobs/{id}", s.handleJobDelete)

	mux.HandleFunc("GET /api/backups", s.handleBackupList)
	mux.HandleFunc("POST /api/backups", s.handleBackupCreate)
	mux.HandleFunc("POST /api/backups/job", s.handleBackupJob)

	return s.instrument(mux)
}

// ListenAndServe blocks until Shutdown or a listener error.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	s.log.Info().Str("addr", addr).Msg("http server listening")
	err := s.http.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// instrument wraps the mux with the access log and HTTP metrics. Numeric
// path segments collapse to :id so the metric labels stay bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		elapsed := time.Since(start)
		if s.m != nil {
			s.m.RecordHTTP(r.Method, normalizePath(r.URL.Path), sw.status, elapsed)
		}
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", elapsed).
			Msg("http request")
	})
}

func normalizePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		if part == "" {
			continue
		}
		numeric := true
		for _, r := range part {
			if r < '0' || r > '9' {
				numeric = false
				break
			}
		}
		if numeric {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Response{Success: false, Error: &APIError{Code: code, Message: message}})
}

// respondDomainError translates the domain sentinels to HTTP statuses; the
// ones a front end acts on get stable codes.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, domain.ErrBusy):
		respondError(w, http.StatusConflict, "BUSY", err.Error())
	case errors.Is(err, domain.ErrNothingToUndo):
		respondError(w, http.StatusConflict, "NOTHING_TO_UNDO", err.Error())
	case errors.Is(err, domain.ErrNothingToRedo):
		respondError(w, http.StatusConflict, "NOTHING_TO_REDO", err.Error())
	case errors.Is(err, domain.ErrInvalidSpan):
		respondError(w, http.StatusBadRequest, "INVALID_SPAN", err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}
