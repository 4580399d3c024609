package ports

import "context"

// Maintenance exposes the file-level database operations the backup and
// autosave services need from the storage adapter.
type Maintenance interface {
	// Snapshot writes a consistent copy of the database to destPath, which
	// must not exist yet.
	Snapshot(ctx context.Context, destPath string) error
	// Checkpoint flushes the write-ahead log into the main database file.
	Checkpoint(ctx context.Context) error
}
