package app

import (
	"context"
	"errors"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/autosave"
)

// WorkspaceAPI covers the odds and ends of the running workspace: forced
// saves, the status bar, and UI preference passthrough.
type WorkspaceAPI struct {
	saver    *autosave.Saver
	settings ports.SettingsRepository
	version  string
	dataDir  string
	hooks    Hooks
}

func NewWorkspaceAPI(saver *autosave.Saver, settings ports.SettingsRepository,
	version, dataDir string, hooks Hooks) *WorkspaceAPI {
	return &WorkspaceAPI{
		saver:    saver,
		settings: settings,
		version:  version,
		dataDir:  dataDir,
		hooks:    hooks,
	}
}

// SaveNow flushes pending changes immediately, for the explicit Ctrl+S
// reflex autosave otherwise makes unnecessary.
func (a *WorkspaceAPI) SaveNow() error { return a.saver.Flush() }

type WorkspaceStatus struct {
	Version     string `json:"version"`
	DataDir     string `json:"data_dir"`
	LastSavedAt string `json:"last_saved_at,omitempty"`
}

func (a *WorkspaceAPI) Status() (*WorkspaceStatus, error) {
	ctx := context.Background()
	st := &WorkspaceStatus{Version: a.version, DataDir: a.dataDir}
	ts, err := a.settings.Get(ctx, autosave.SettingLastSaved)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	st.LastSavedAt = ts
	return st, nil
}

// Setting reads one stored preference; missing keys come back empty.
func (a *WorkspaceAPI) Setting(key string) (string, error) {
	ctx := context.Background()
	v, err := a.settings.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	return v, err
}

func (a *WorkspaceAPI) SetSetting(key, value string) error {
	ctx := context.Background()
	if err := a.settings.Set(ctx, key, value); err != nil {
		return err
	}
	a.hooks.markDirty()
	return nil
}

func (a *WorkspaceAPI) Settings() ([]*domain.Setting, error) {
	ctx := context.Background()
	return a.settings.All(ctx)
}
