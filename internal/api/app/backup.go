package app

import (
	"context"

	"wordhord/internal/domain"
	"wordhord/internal/usecase/backup"
	"wordhord/internal/usecase/jobs"
)

// BackupAPI archives and lists database snapshots. Restoring is not exposed
// here: the archive replaces the database file, which needs the app closed,
// so it lives on the command line instead.
type BackupAPI struct {
	svc    *backup.Service
	runner *jobs.Runner
}

func NewBackupAPI(svc *backup.Service, runner *jobs.Runner) *BackupAPI {
	return &BackupAPI{svc: svc, runner: runner}
}

// Create snapshots the database right now and blocks until the archive is
// on disk.
func (a *BackupAPI) Create() (*domain.BackupInfo, error) {
	ctx := context.Background()
	return a.svc.Create(ctx)
}

// StartJob runs the same snapshot as a background job, for the menu action
// that should not freeze the window on large databases.
func (a *BackupAPI) StartJob() (StartJobResponse, error) {
	ctx := context.Background()
	jid, err := a.runner.StartBackup(ctx)
	if err != nil {
		return StartJobResponse{}, err
	}
	return StartJobResponse{JobID: jid}, nil
}

func (a *BackupAPI) List() ([]*domain.BackupInfo, error) {
	ctx := context.Background()
	return a.svc.List(ctx)
}
