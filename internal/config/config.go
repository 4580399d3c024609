// Package config loads the application configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration unmarshals Go duration strings like "2s" or "15m" from YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(dd)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	DataDir   string `yaml:"data_dir"`
	Listen    string `yaml:"listen"`
	LogLevel  string `yaml:"log_level"`
	LogPretty bool   `yaml:"log_pretty"`
	UndoLimit int    `yaml:"undo_limit"` // 0 uses the built-in depth

	Autosave struct {
		Delay       Duration `yaml:"delay"`
		BackupEvery Duration `yaml:"backup_every"` // 0 disables scheduled backups
	} `yaml:"autosave"`

	Backup struct {
		Dir  string `yaml:"dir"` // empty resolves to <data_dir>/backups
		Keep int    `yaml:"keep"`
	} `yaml:"backup"`
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	var c Config
	c.DataDir = defaultDataDir()
	c.Listen = "127.0.0.1:8765"
	c.LogLevel = "info"
	c.Autosave.Delay = Duration(2 * time.Second)
	c.Autosave.BackupEvery = Duration(15 * time.Minute)
	c.Backup.Keep = 10
	return c
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() string {
	return filepath.Join(defaultDataDir(), "config.yaml")
}

// Load reads the YAML file at path over the defaults. An empty path means
// DefaultPath, and a missing file at the default location is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// DBPath is the project database location.
func (c Config) DBPath() string { return filepath.Join(c.DataDir, "wordhord.db") }

// BackupDir resolves the backup directory, defaulting under the data dir.
func (c Config) BackupDir() string {
	if c.Backup.Dir != "" {
		return c.Backup.Dir
	}
	return filepath.Join(c.DataDir, "backups")
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".wordhord"
	}
	return filepath.Join(home, ".wordhord")
}
