// Package backup snapshots and restores the local SQLite diary file.
package backup

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/logger"
)

// Reason records what triggered a backup. It is part of the file name.
type Reason string

const (
	ReasonManual     Reason = "manual"
	ReasonStartup    Reason = "startup"
	ReasonPreImport  Reason = "pre-import"
	ReasonPreRestore Reason = "pre-restore"
)

// timestampLayout sorts lexically in creation order.
const timestampLayout = "20060102T150405.000"

// Info describes one backup file.
type Info struct {
	Path      string
	Reason    Reason
	Timestamp time.Time
	Size      int64
}

type Manager struct {
	dbPath string
	dir    string
	keep   int
	now    func() time.Time
}

// NewManager returns a manager keeping its backups next to dbPath.
func NewManager(dbPath string) *Manager {
	return &Manager{
		dbPath: dbPath,
		dir:    filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		keep:   constants.MaxBackups,
		now:    time.Now,
	}
}

func (m *Manager) Dir() string {
	return m.dir
}

// Create copies the database into the backup directory and prunes the
// oldest backups beyond the retention limit.
func (m *Manager) Create(ctx context.Context, reason Reason) (Info, error) {
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Info{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return Info{}, fmt.Errorf("failed to create backup directory: %w", err)
	}

	ts := m.now().UTC()
	path := m.pathFor(ts, reason)
	for i := 0; fileExists(path); i++ {
		if i >= 1000 {
			return Info{}, fmt.Errorf("failed to generate unique backup filename")
		}
		ts = ts.Add(time.Millisecond)
		path = m.pathFor(ts, reason)
	}

	if err := m.snapshot(ctx, path); err != nil {
		return Info{}, fmt.Errorf("failed to backup database: %w", err)
	}

	// Restores never prune, so the backup being restored is never removed.
	if reason != ReasonPreRestore {
		if err := m.rotate(); err != nil {
			logger.Warn("Failed to rotate old backups", "error", err)
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return Info{}, err
	}
	logger.Info("Created backup", "path", path, "reason", reason)
	return Info{Path: path, Reason: reason, Timestamp: ts.Truncate(time.Millisecond), Size: info.Size()}, nil
}

func (m *Manager) pathFor(ts time.Time, reason Reason) string {
	name := constants.BackupFilePrefix + ts.Format(timestampLayout) + "_" + string(reason) + constants.BackupFileSuffix
	return filepath.Join(m.dir, name)
}

// snapshot writes a consistent copy of the database with VACUUM INTO,
// falling back to a plain file copy.
func (m *Manager) snapshot(ctx context.Context, dest string) error {
	src, err := sql.Open("sqlite", m.dbPath+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer src.Close()

	var count int
	if err := src.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&count); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}

	if _, err := src.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		logger.Debug("VACUUM INTO failed, copying file instead", "error", err)
		src.Close()
		return copyFile(m.dbPath, dest)
	}
	return nil
}

// List returns the backups in the backup directory, newest first.
// Files that do not follow the backup naming scheme are ignored.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return []Info{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	backups := []Info{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ts, reason, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		fi, err := entry.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Path:      filepath.Join(m.dir, entry.Name()),
			Reason:    reason,
			Timestamp: ts,
			Size:      fi.Size(),
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		return backups[i].Timestamp.After(backups[j].Timestamp)
	})
	return backups, nil
}

func parseName(name string) (time.Time, Reason, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, "", false
	}
	rest := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	stamp, reason, ok := strings.Cut(rest, "_")
	if !ok || reason == "" {
		return time.Time{}, "", false
	}
	ts, err := time.Parse(timestampLayout, stamp)
	if err != nil {
		return time.Time{}, "", false
	}
	return ts, Reason(reason), true
}

func (m *Manager) rotate() error {
	backups, err := m.List()
	if err != nil {
		return err
	}
	for i := m.keep; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// Restore replaces the database with the given backup. The current database,
// if any, is backed up first; that backup is returned so callers can report it.
// The store must not hold the file open while restoring.
func (m *Manager) Restore(ctx context.Context, path string) (*Info, error) {
	if !fileExists(path) {
		return nil, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := verify(ctx, path); err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var current *Info
	if fileExists(m.dbPath) {
		info, err := m.Create(ctx, ReasonPreRestore)
		if err != nil {
			return nil, fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		current = &info
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return nil, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary restore file", "path", tmp, "error", rmErr)
		}
		return nil, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Restored database", "from", path)
	return current, nil
}

// verify checks that path is a SQLite database holding diary entries.
func verify(ctx context.Context, path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()

	var count int
	err = db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'time_entries'").Scan(&count)
	if err != nil {
		return err
	}
	if count == 0 {
		return fmt.Errorf("no time_entries table in %s", filepath.Base(path))
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
