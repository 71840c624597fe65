package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/keyring"
	"github.com/julianstephens/timediary/internal/lockfile"
	"github.com/julianstephens/timediary/internal/slots"
	"github.com/julianstephens/timediary/internal/storage/sqlite"
)

// diaryTables are the tables Init creates.
var diaryTables = []string{"projects", "templates", "reflections", "time_entries"}

type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *Context) error {
	ctx.println("Running diagnostics...")
	ctx.println()

	hasError := false
	report := func(name string, err error, warnOnly bool) {
		switch {
		case err == nil:
			ctx.printf("✓ %s: OK\n", name)
		case warnOnly:
			ctx.printf("⚠ %s: WARNING\n", name)
			ctx.printf("   %v\n", err)
		default:
			ctx.printf("❌ %s: FAIL\n", name)
			ctx.printf("   Error: %v\n", err)
			hasError = true
		}
	}

	dbErr := checkDBReachable(ctx)
	report("Database reachable", dbErr, false)

	if dbErr == nil {
		report("Schema", checkSchema(ctx), false)
		report("Data validation", checkEntries(ctx), false)
	} else {
		ctx.printf("⊘ Schema: SKIPPED (database not reachable)\n")
		ctx.printf("⊘ Data validation: SKIPPED (database not reachable)\n")
	}

	if err := checkBackupsPresent(ctx); !errors.Is(err, errNotApplicable) {
		report("Backups present", err, true)
	}
	report("OS keyring", checkKeyring(), true)
	report("Auto-save lock", checkAutoSaveLock(ctx), true)
	report("Clock/timezone", checkClockTimezone(ctx), false)

	ctx.println()
	if hasError {
		ctx.println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.println("All diagnostics passed!")
	return nil
}

var errNotApplicable = errors.New("check does not apply to this store")

func checkDBReachable(ctx *Context) error {
	if err := ctx.Store.Load(ctx.context()); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}

	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		var result int
		if err := db.QueryRowContext(ctx.context(), "SELECT 1").Scan(&result); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

// checkSchema confirms every table is present and readable.
func checkSchema(ctx *Context) error {
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		for _, table := range diaryTables {
			var count int
			row := s.GetDB().QueryRowContext(ctx.context(),
				"SELECT count(*) FROM sqlite_master WHERE type='table' AND name = ?", table)
			if err := row.Scan(&count); err != nil {
				return fmt.Errorf("failed to inspect table %s: %w", table, err)
			}
			if count == 0 {
				return fmt.Errorf("table %s is missing, run '%s init'", table, constants.AppName)
			}
		}
	}

	if _, err := ctx.Store.GetProjects(ctx.context()); err != nil {
		return fmt.Errorf("failed to read projects: %w", err)
	}
	if _, err := ctx.Store.GetTemplates(ctx.context()); err != nil {
		return fmt.Errorf("failed to read templates: %w", err)
	}
	return nil
}

// checkEntries scans the JSON export window for rows a UI could not show.
func checkEntries(ctx *Context) error {
	to := time.Now()
	from := to.AddDate(0, 0, -(ctx.Settings.JSONExportDays - 1))
	entries, err := ctx.Store.GetEntriesInRange(ctx.context(),
		from.Format(constants.DateFormat), to.Format(constants.DateFormat))
	if err != nil {
		return fmt.Errorf("failed to read time entries: %w", err)
	}

	bad := 0
	for _, e := range entries {
		if !slots.IsValid(e.Slot) || e.Block.Validate() != nil {
			bad++
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d of %d recent time entries have an invalid slot or energy", bad, len(entries))
	}
	return nil
}

func checkBackupsPresent(ctx *Context) error {
	mgr, err := ctx.backupManager()
	if err != nil {
		return errNotApplicable
	}
	backups, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with '%s backup create'", constants.AppName)
	}
	return nil
}

func checkKeyring() error {
	if !keyring.IsAvailable() {
		return fmt.Errorf("OS keyring is unavailable; use %s for PostgreSQL credentials", constants.ConnectionEnvVar)
	}
	return nil
}

// checkAutoSaveLock reports another live process holding the auto-save lock.
// A stale lock left by a dead process is cleared.
func checkAutoSaveLock(ctx *Context) error {
	lock, err := lockfile.Acquire(filepath.Join(ctx.ConfigDir, constants.AutoSaveLockfileName))
	if err != nil {
		var held *lockfile.HeldError
		if errors.As(err, &held) {
			return fmt.Errorf("auto-save is running in process %d; a second TUI will not auto-save", held.PID)
		}
		return err
	}
	return lock.Release()
}

func checkClockTimezone(ctx *Context) error {
	now := time.Now()

	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	// Dates are local calendar days; note UTC so users abroad are not surprised.
	if _, offset := now.Zone(); offset == 0 && now.Location() == time.UTC {
		ctx.printf("   Note: timezone is UTC\n")
	}
	return nil
}
