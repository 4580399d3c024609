package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"wordhord/internal/api/app"
)

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	return id, err == nil
}

func decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleWorkspaceStatus(w http.ResponseWriter, r *http.Request) {
	st, err := s.d.Workspace.Status()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleSaveNow(w http.ResponseWriter, r *http.Request) {
	if err := s.d.Workspace.SaveNow(); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleSettingsAll(w http.ResponseWriter, r *http.Request) {
	all, err := s.d.Workspace.Settings()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, all)
}

func (s *Server) handleSettingGet(w http.ResponseWriter, r *http.Request) {
	v, err := s.d.Workspace.Setting(r.PathValue("key"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": r.PathValue("key"), "value": v})
}

func (s *Server) handleSettingSet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	if err := s.d.Workspace.SetSetting(r.PathValue("key"), req.Value); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleProjectList(w http.ResponseWriter, r *http.Request) {
	ps, err := s.d.Projects.List()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ps)
}

func (s *Server) handleProjectCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	p, err := s.d.Projects.Create(req.Name, req.Source)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, p)
}

func (s *Server) handleProjectGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	p, err := s.d.Projects.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleProjectUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	var req struct {
		Name   string `json:"name"`
		Source string `json:"source"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	p, err := s.d.Projects.Update(id, req.Name, req.Source)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handleProjectDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	if _, err := s.d.Projects.Delete(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleSentenceList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	list, err := s.d.Sentences.List(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleSentenceGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	view, err := s.d.Sentences.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

func (s *Server) handleSentenceEditText(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	res, err := s.d.Sentences.EditText(id, req.Text)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleSentenceTranslation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	var req struct {
		Translation string `json:"translation"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	sent, err := s.d.Sentences.SetTranslation(id, req.Translation)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sent)
}

func (s *Server) handleToggleParagraph(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	sent, err := s.d.Sentences.ToggleParagraphBreak(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sent)
}

func (s *Server) handleTokenList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	toks, err := s.d.Tokens.ListBySentence(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, toks)
}

func (s *Server) handleAnnotationGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	ann, err := s.d.Annotations.GetToken(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ann)
}

func (s *Server) handleAnnotateToken(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	var req app.AnnotateTokenRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	req.TokenID = id
	ann, err := s.d.Annotations.AnnotateToken(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ann)
}

func (s *Server) handleAnnotationClear(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	removed, err := s.d.Annotations.ClearToken(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleIdiomList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	list, err := s.d.Idioms.ListBySentence(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleIdiomCreate(w http.ResponseWriter, r *http.Request) {
	var req app.CreateIdiomRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	idm, err := s.d.Idioms.Create(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, idm)
}

func (s *Server) handleIdiomDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	if _, err := s.d.Idioms.Delete(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleAnnotateIdiom(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	var req app.AnnotateIdiomRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	req.IdiomID = id
	ann, err := s.d.Annotations.AnnotateIdiom(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ann)
}

func (s *Server) handleNoteList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	list, err := s.d.Notes.ListBySentence(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleNoteSet(w http.ResponseWriter, r *http.Request) {
	var req app.SetNoteRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	n, err := s.d.Notes.Set(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, n)
}

func (s *Server) handleNoteDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	if _, err := s.d.Notes.Delete(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handlePresetList(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Presets.List()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handlePresetUpsert(w http.ResponseWriter, r *http.Request) {
	var req app.UpsertPresetRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	p, err := s.d.Presets.Upsert(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, p)
}

func (s *Server) handlePresetDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	if _, err := s.d.Presets.Delete(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handlePresetApply(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	var req struct {
		TokenID int64 `json:"token_id"`
	}
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	ann, err := s.d.Presets.Apply(id, req.TokenID)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, ann)
}

func (s *Server) handleHistoryStatus(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.d.History.Status())
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	res, err := s.d.History.Undo()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	res, err := s.d.History.Redo()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleImportStart(w http.ResponseWriter, r *http.Request) {
	var req app.StartImportRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	res, err := s.d.Imports.Start(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleImportProject(w http.ResponseWriter, r *http.Request) {
	var req app.StartImportProjectRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	res, err := s.d.Imports.StartProject(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleImportFormats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.d.Imports.Formats())
}

func (s *Server) handleExportDownload(w http.ResponseWriter, r *http.Request) {
	var req app.ExportRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	res, err := s.d.Exports.Download(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleExportStart(w http.ResponseWriter, r *http.Request) {
	var req app.StartExportRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "BAD_JSON", err.Error())
		return
	}
	res, err := s.d.Exports.Start(req)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, res)
}

func (s *Server) handleExportFormats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.d.Exports.Formats())
}

func (s *Server) handleJobList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	list, err := s.d.Jobs.List(limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleJobGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	j, err := s.d.Jobs.Get(id)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, j)
}

func (s *Server) handleJobLogs(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	limit := 200
	if q := r.URL.Query().Get("limit"); q != "" {
		if n, err := strconv.Atoi(q); err == nil && n > 0 {
			limit = n
		}
	}
	logs, err := s.d.Jobs.Logs(id, limit)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, logs)
}

func (s *Server) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	respondJSON(w, http.StatusOK, map[string]bool{"canceled": s.d.Jobs.Cancel(id)})
}

func (s *Server) handleJobDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		respondError(w, http.StatusBadRequest, "BAD_ID", "numeric id expected")
		return
	}
	if _, err := s.d.Jobs.Delete(id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, nil)
}

func (s *Server) handleBackupList(w http.ResponseWriter, r *http.Request) {
	list, err := s.d.Backups.List()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleBackupCreate(w http.ResponseWriter, r *http.Request) {
	info, err := s.d.Backups.Create()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleBackupJob(w http.ResponseWriter, r *http.Request) {
	res, err := s.d.Backups.StartJob()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusAccepted, res)
}
