// Package config loads the YAML settings file and resolves which store to open.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/timediary/internal/constants"
)

// Settings is the on-disk settings file. Zero values fall back to defaults.
type Settings struct {
	Store            string        `yaml:"store,omitempty"`
	AutoSaveInterval time.Duration `yaml:"autosave_interval,omitempty"`
	JSONExportDays   int           `yaml:"json_export_days,omitempty"`
	CSVExportDays    int           `yaml:"csv_export_days,omitempty"`
	ExportDir        string        `yaml:"export_dir,omitempty"`
}

func Default() Settings {
	return Settings{
		Store:            constants.DefaultConfigPath,
		AutoSaveInterval: constants.AutoSaveInterval,
		JSONExportDays:   constants.JSONExportDays,
		CSVExportDays:    constants.CSVExportDays,
		ExportDir:        ".",
	}
}

// withDefaults fills every unset or invalid field from Default.
func (s Settings) withDefaults() Settings {
	d := Default()
	if strings.TrimSpace(s.Store) == "" {
		s.Store = d.Store
	}
	if s.AutoSaveInterval <= 0 {
		s.AutoSaveInterval = d.AutoSaveInterval
	}
	if s.JSONExportDays <= 0 {
		s.JSONExportDays = d.JSONExportDays
	}
	if s.CSVExportDays <= 0 {
		s.CSVExportDays = d.CSVExportDays
	}
	if s.ExportDir == "" {
		s.ExportDir = d.ExportDir
	}
	return s
}

// Path returns the settings file location inside dir.
func Path(dir string) string {
	return filepath.Join(dir, constants.SettingsFileName)
}

// Load reads the settings file at path. A missing file yields the defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings: %w", err)
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	return s.withDefaults(), nil
}

// Save writes s to path, creating its directory.
func Save(path string, s Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// ExpandPath replaces a leading ~ with the user's home directory.
func ExpandPath(p string) (string, error) {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~")), nil
}

// Source names where a store target came from.
type Source string

const (
	SourceFlag     Source = "flag"
	SourceEnv      Source = "environment"
	SourceKeyring  Source = "keyring"
	SourceSettings Source = "settings"
)

// Secret reports whether the target came from a place allowed to hold a password.
func (s Source) Secret() bool {
	return s == SourceEnv || s == SourceKeyring
}

// Resolver picks the store target. The first non-empty of these wins:
// the --config flag, the environment variable, the keyring, the settings file.
type Resolver struct {
	Getenv  func(string) string
	Keyring func() (string, error)
}

func (r Resolver) Resolve(flag string, s Settings) (string, Source, error) {
	if strings.TrimSpace(flag) != "" {
		return expand(flag, SourceFlag)
	}
	if r.Getenv != nil {
		if v := strings.TrimSpace(r.Getenv(constants.ConnectionEnvVar)); v != "" {
			return v, SourceEnv, nil
		}
	}
	if r.Keyring != nil {
		// An unavailable keyring is not fatal; the settings file still applies.
		if v, err := r.Keyring(); err == nil && strings.TrimSpace(v) != "" {
			return v, SourceKeyring, nil
		}
	}
	return expand(s.withDefaults().Store, SourceSettings)
}

func expand(target string, src Source) (string, Source, error) {
	p, err := ExpandPath(target)
	if err != nil {
		return "", "", err
	}
	return p, src, nil
}

// Dir is the directory holding logs, settings and the lockfile. For a
// SQLite store it is the database's directory; otherwise the user config dir.
func Dir(target string) (string, error) {
	if target != "" && !strings.Contains(target, "://") {
		return filepath.Dir(target), nil
	}
	dir, err := ExpandPath(filepath.Dir(constants.DefaultConfigPath))
	if err != nil {
		return "", err
	}
	return dir, nil
}
