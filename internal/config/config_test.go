package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
data_dir: /tmp/hord
log_level: debug
autosave:
  delay: 500ms
backup:
  keep: 3
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataDir != "/tmp/hord" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q", cfg.LogLevel)
	}
	if cfg.Autosave.Delay.Std() != 500*time.Millisecond {
		t.Errorf("autosave delay = %v", cfg.Autosave.Delay.Std())
	}
	// Untouched keys keep their defaults.
	if cfg.Listen != "127.0.0.1:8765" {
		t.Errorf("listen = %q", cfg.Listen)
	}
	if cfg.Autosave.BackupEvery.Std() != 15*time.Minute {
		t.Errorf("backup_every = %v", cfg.Autosave.BackupEvery.Std())
	}
	if cfg.Backup.Keep != 3 {
		t.Errorf("keep = %d", cfg.Backup.Keep)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "listen: 127.0.0.1:9000\nserver_port: 9000\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadRejectsBadDuration(t *testing.T) {
	path := writeConfig(t, "autosave:\n  delay: soon\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "invalid duration") {
		t.Fatalf("err = %v, want invalid duration", err)
	}
}

func TestLoadMissingExplicitPath(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestDerivedPaths(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data/hord"
	if got := cfg.DBPath(); got != filepath.Join("/data/hord", "wordhord.db") {
		t.Errorf("db path = %q", got)
	}
	if got := cfg.BackupDir(); got != filepath.Join("/data/hord", "backups") {
		t.Errorf("backup dir = %q", got)
	}
	cfg.Backup.Dir = "/mnt/usb"
	if got := cfg.BackupDir(); got != "/mnt/usb" {
		t.Errorf("explicit backup dir = %q", got)
	}
}
