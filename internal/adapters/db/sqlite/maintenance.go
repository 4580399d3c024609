package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// Maintenance runs file-level operations against the live database handle.
type Maintenance struct {
	DB *sql.DB
}

func NewMaintenance(db *sql.DB) *Maintenance { return &Maintenance{DB: db} }

// Snapshot copies the whole database to destPath via VACUUM INTO, which
// produces a compact, consistent image even while other connections write.
// destPath must not exist yet.
func (m *Maintenance) Snapshot(ctx context.Context, destPath string) error {
	if _, err := m.DB.ExecContext(ctx, `VACUUM INTO ?`, destPath); err != nil {
		return fmt.Errorf("vacuum into %s: %w", destPath, err)
	}
	return nil
}

// Checkpoint moves the WAL content into the main file and truncates the log.
func (m *Maintenance) Checkpoint(ctx context.Context) error {
	if _, err := m.DB.ExecContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`); err != nil {
		return fmt.Errorf("wal checkpoint: %w", err)
	}
	return nil
}
