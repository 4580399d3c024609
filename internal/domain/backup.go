package domain

import "time"

// BackupInfo describes one archived snapshot of the project database.
// The checksum covers the database file inside the archive, so a restore
// can verify the snapshot before replacing the live database.
type BackupInfo struct {
	ID         string    `json:"id"`
	Path       string    `json:"path"`
	Checksum   string    `json:"checksum"` // blake3 hex of the db snapshot
	SizeBytes  int64     `json:"size_bytes"`
	AppVersion string    `json:"app_version"`
	CreatedAt  time.Time `json:"created_at"`
}
