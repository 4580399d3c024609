// Package autosave coalesces mutation bursts into periodic flushes of the
// write-ahead log and schedules background backups while the app is idle.
package autosave

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"wordhord/internal/domain"
	"wordhord/internal/ports"
	"wordhord/internal/usecase/backup"
)

// SettingLastSaved is the settings key holding the RFC3339 stamp of the last
// successful flush.
const SettingLastSaved = "autosave.last_saved_at"

const (
	DefaultDelay       = 2 * time.Second
	DefaultBackupEvery = 15 * time.Minute

	flushTimeout  = 10 * time.Second
	backupTimeout = time.Minute
)

// Guard serializes the flush against the command layer so a checkpoint never
// runs in the middle of a multi-row command. *commands.Manager satisfies it.
type Guard interface {
	RunExclusive(fn func() error) error
}

// Saver watches for dirty marks and flushes at most Delay after the first
// unsaved change; marks inside the window ride along with the pending flush.
// When Backups is set, it also snapshots the database every BackupEvery as
// long as something changed since the previous snapshot.
type Saver struct {
	DB          ports.Maintenance
	Settings    ports.SettingsRepository
	Guard       Guard
	Backups     *backup.Service // nil disables scheduled backups
	Delay       time.Duration
	BackupEvery time.Duration
	OnFlush     func() // optional metrics hook, called after each completed flush
	Log         zerolog.Logger

	markCh  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	flushes atomic.Int64
}

func New(db ports.Maintenance, settings ports.SettingsRepository, guard Guard, log zerolog.Logger) *Saver {
	return &Saver{
		DB:          db,
		Settings:    settings,
		Guard:       guard,
		Delay:       DefaultDelay,
		BackupEvery: DefaultBackupEvery,
		Log:         log,
		markCh:      make(chan struct{}, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start launches the background loop. Adjust Delay, Backups and BackupEvery
// before calling it.
func (s *Saver) Start() {
	go s.run()
}

// Stop shuts the loop down, flushing a pending save first. Call it once,
// after Start.
func (s *Saver) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

// MarkDirty notes that the database changed. Safe from any goroutine.
func (s *Saver) MarkDirty() {
	select {
	case s.markCh <- struct{}{}:
	default:
	}
}

// Flush forces a synchronous save. Used at shutdown and by the save-now API.
func (s *Saver) Flush() error { return s.flush() }

// Flushes reports how many saves completed, for metrics and tests.
func (s *Saver) Flushes() int64 { return s.flushes.Load() }

func (s *Saver) run() {
	defer close(s.doneCh)

	var flushT *time.Timer
	var flushC <-chan time.Time
	arm := func(d time.Duration) {
		if flushT == nil {
			flushT = time.NewTimer(d)
			flushC = flushT.C
		}
	}

	var backupC <-chan time.Time
	if s.Backups != nil && s.BackupEvery > 0 {
		t := time.NewTicker(s.BackupEvery)
		defer t.Stop()
		backupC = t.C
	}

	dirtyForBackup := false
	for {
		select {
		case <-s.markCh:
			dirtyForBackup = true
			arm(s.Delay)
		case <-flushC:
			flushT, flushC = nil, nil
			if err := s.flush(); err != nil {
				if errors.Is(err, domain.ErrBusy) {
					// A command is mid-flight; try again one window later.
					arm(s.Delay)
					continue
				}
				s.Log.Error().Err(err).Msg("autosave flush failed")
			}
		case <-backupC:
			if !dirtyForBackup {
				continue
			}
			if err := s.backup(); err != nil {
				if !errors.Is(err, domain.ErrBusy) {
					s.Log.Error().Err(err).Msg("scheduled backup failed")
				}
				continue // still dirty, next tick retries
			}
			dirtyForBackup = false
		case <-s.stopCh:
			if flushT != nil {
				flushT.Stop()
				if err := s.flush(); err != nil {
					s.Log.Warn().Err(err).Msg("final autosave flush failed")
				}
			}
			return
		}
	}
}

func (s *Saver) flush() error {
	err := s.Guard.RunExclusive(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
		defer cancel()
		if err := s.DB.Checkpoint(ctx); err != nil {
			return fmt.Errorf("checkpoint: %w", err)
		}
		stamp := time.Now().UTC().Format(time.RFC3339)
		if err := s.Settings.Set(ctx, SettingLastSaved, stamp); err != nil {
			return fmt.Errorf("record save stamp: %w", err)
		}
		return nil
	})
	if err == nil {
		s.flushes.Add(1)
		if s.OnFlush != nil {
			s.OnFlush()
		}
		s.Log.Debug().Msg("autosave flushed")
	}
	return err
}

func (s *Saver) backup() error {
	return s.Guard.RunExclusive(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
		defer cancel()
		_, err := s.Backups.Create(ctx)
		return err
	})
}
