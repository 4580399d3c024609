// Package backup archives consistent snapshots of the project database as
// tar.xz files and restores them after verifying integrity.
package backup

import (
	"archive/tar"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
)

const (
	manifestName  = "manifest.json"
	snapshotName  = "snapshot.db"
	archivePrefix = "wordhord-"
	archiveExt    = ".tar.xz"

	// stampFormat keeps nanoseconds in the file name, so names sort in
	// creation order even for backups taken within the same second.
	stampFormat = "20060102-150405.000000000"
)

// DefaultKeep bounds how many archives rotation leaves behind.
const DefaultKeep = 10

// ErrChecksumMismatch means the archived snapshot does not hash to the
// checksum recorded in its manifest. The live database is left untouched.
var ErrChecksumMismatch = errors.New("backup checksum does not match manifest")

type Service struct {
	DB         ports.Maintenance
	Dir        string
	Keep       int
	AppVersion string
	Log        zerolog.Logger
}

func New(db ports.Maintenance, dir string, keep int, appVersion string, log zerolog.Logger) *Service {
	if keep <= 0 {
		keep = DefaultKeep
	}
	return &Service{DB: db, Dir: dir, Keep: keep, AppVersion: appVersion, Log: log}
}

// Create snapshots the database, packs it with a manifest into a tar.xz
// archive under the backup directory and rotates out the oldest archives
// beyond the configured keep count.
func (s *Service) Create(ctx context.Context) (*domain.BackupInfo, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("make backup dir: %w", err)
	}
	now := time.Now().UTC()
	snapPath := filepath.Join(s.Dir, fmt.Sprintf(".snapshot-%d.db", now.UnixNano()))
	if err := s.DB.Snapshot(ctx, snapPath); err != nil {
		return nil, fmt.Errorf("snapshot database: %w", err)
	}
	defer os.Remove(snapPath)

	data, err := os.ReadFile(snapPath)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	sum := blake3.Sum256(data)

	archPath := filepath.Join(s.Dir, archivePrefix+now.Format(stampFormat)+archiveExt)
	info := &domain.BackupInfo{
		ID:         uuid.NewString(),
		Path:       archPath,
		Checksum:   hex.EncodeToString(sum[:]),
		SizeBytes:  int64(len(data)),
		AppVersion: s.AppVersion,
		CreatedAt:  now,
	}
	if err := writeArchive(archPath, info, data); err != nil {
		os.Remove(archPath)
		return nil, err
	}
	s.Log.Info().Str("path", archPath).Int64("size", info.SizeBytes).Msg("backup created")
	if err := s.rotate(); err != nil {
		s.Log.Warn().Err(err).Msg("backup rotation failed")
	}
	return info, nil
}

// List returns the manifests of every readable archive in the backup
// directory, newest first. Unreadable archives are skipped with a warning.
func (s *Service) List(ctx context.Context) ([]*domain.BackupInfo, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read backup dir: %w", err)
	}
	var out []*domain.BackupInfo
	for _, e := range entries {
		if e.IsDir() || !isArchiveName(e.Name()) {
			continue
		}
		path := filepath.Join(s.Dir, e.Name())
		info, _, err := readArchive(path, false)
		if err != nil {
			s.Log.Warn().Err(err).Str("path", path).Msg("skipping unreadable backup")
			continue
		}
		info.Path = path
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Restore unpacks the archive, verifies the snapshot against the manifest
// checksum and only then replaces the database file at dbPath. Stale WAL and
// SHM sidecars next to dbPath are removed so the restored database starts
// clean. The live connection must be closed before calling Restore.
func (s *Service) Restore(ctx context.Context, archivePath, dbPath string) (*domain.BackupInfo, error) {
	info, data, err := readArchive(archivePath, true)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("archive has no %s", snapshotName)
	}
	sum := blake3.Sum256(data)
	if hex.EncodeToString(sum[:]) != info.Checksum {
		return nil, ErrChecksumMismatch
	}
	tmp := dbPath + ".restore"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return nil, fmt.Errorf("write restored db: %w", err)
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("replace db: %w", err)
	}
	for _, side := range []string{dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(side); err != nil && !os.IsNotExist(err) {
			s.Log.Warn().Err(err).Str("path", side).Msg("could not remove stale sidecar")
		}
	}
	s.Log.Info().Str("archive", archivePath).Str("db", dbPath).Msg("backup restored")
	return info, nil
}

func (s *Service) rotate() error {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && isArchiveName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	if len(names) <= s.Keep {
		return nil
	}
	sort.Strings(names) // stamped names sort oldest first
	for _, name := range names[:len(names)-s.Keep] {
		path := filepath.Join(s.Dir, name)
		if err := os.Remove(path); err != nil {
			return err
		}
		s.Log.Info().Str("path", path).Msg("rotated out old backup")
	}
	return nil
}

func isArchiveName(name string) bool {
	return strings.HasPrefix(name, archivePrefix) && strings.HasSuffix(name, archiveExt)
}

func writeArchive(path string, info *domain.BackupInfo, db []byte) error {
	manifest, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create archive: %w", err)
	}
	xw, err := xz.NewWriter(f)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)
	err = writeEntry(tw, manifestName, manifest)
	if err == nil {
		err = writeEntry(tw, snapshotName, db)
	}
	// Close in order so the xz stream is fully flushed before the file closes.
	if cerr := tw.Close(); err == nil {
		err = cerr
	}
	if cerr := xw.Close(); err == nil {
		err = cerr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func writeEntry(tw *tar.Writer, name string, data []byte) error {
	hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(data))}
	if err := tw.WriteHeader(hdr); err != nil {
		return fmt.Errorf("tar header %s: %w", name, err)
	}
	if _, err := tw.Write(data); err != nil {
		return fmt.Errorf("tar write %s: %w", name, err)
	}
	return nil
}

// readArchive walks the tar stream collecting the manifest and, when wantDB
// is set, the database snapshot. With wantDB false it stops as soon as the
// manifest shows up, which keeps List cheap.
func readArchive(path string, wantDB bool) (*domain.BackupInfo, []byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	xr, err := xz.NewReader(f)
	if err != nil {
		return nil, nil, fmt.Errorf("xz reader: %w", err)
	}
	tr := tar.NewReader(xr)

	var info *domain.BackupInfo
	var db []byte
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read archive entry: %w", err)
		}
		switch hdr.Name {
		case manifestName:
			raw, err := io.ReadAll(tr)
			if err != nil {
				return nil, nil, fmt.Errorf("read manifest: %w", err)
			}
			info = new(domain.BackupInfo)
			if err := json.Unmarshal(raw, info); err != nil {
				return nil, nil, fmt.Errorf("parse manifest: %w", err)
			}
			if !wantDB {
				return info, nil, nil
			}
		case snapshotName:
			if db, err = io.ReadAll(tr); err != nil {
				return nil, nil, fmt.Errorf("read snapshot: %w", err)
			}
		}
	}
	if info == nil {
		return nil, nil, fmt.Errorf("archive has no %s", manifestName)
	}
	return info, db, nil
}
