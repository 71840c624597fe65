package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/storage/sqlite"
)

func TestDoctorCmd_HealthyDB(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t)

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatalf("doctor command failed on healthy database: %v\n%s", err, out.String())
	}
	got := out.String()
	if !strings.Contains(got, "All diagnostics passed!") {
		t.Errorf("output = %q", got)
	}
	// Missing backups is a warning, not a failure
	if !strings.Contains(got, "⚠ Backups present: WARNING") {
		t.Errorf("missing backups not reported as a warning: %q", got)
	}
}

func TestDoctorCmd_WithBackup(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t)
	if err := (&BackupCreateCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	out.Reset()
	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "✓ Backups present: OK") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDoctorCmd_MissingTable(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t)

	db := ctx.Store.(*sqlite.Store).GetDB()
	if _, err := db.Exec("DROP TABLE reflections"); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail with a table missing")
	}
	if !strings.Contains(out.String(), "table reflections is missing") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDoctorCmd_InvalidEntries(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t)

	db := ctx.Store.(*sqlite.Store).GetDB()
	today := time.Now().Format(constants.DateFormat)
	if _, err := db.Exec("INSERT INTO time_entries (date, time_slot, energy_level) VALUES (?, '05:00', 3), (?, '09:00', 9)", today, today); err != nil {
		t.Fatalf("failed to insert entries: %v", err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err == nil {
		t.Error("doctor command should fail on invalid entries")
	}
	if !strings.Contains(out.String(), "2 of 2 recent time entries") {
		t.Errorf("output = %q", out.String())
	}
}

func TestDoctorCmd_StaleAutoSaveLock(t *testing.T) {
	gokeyring.MockInit()
	ctx, out := setupTestContext(t)

	// A pid far beyond any real process.
	lockPath := filepath.Join(ctx.ConfigDir, constants.AutoSaveLockfileName)
	content := strconv.Itoa(1<<30) + "|timediary|" + time.Now().UTC().Format(time.RFC3339)
	if err := os.WriteFile(lockPath, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if err := (&DoctorCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "✓ Auto-save lock: OK") {
		t.Errorf("stale lock not cleared: %q", out.String())
	}
	if _, err := os.Stat(lockPath); !os.IsNotExist(err) {
		t.Errorf("lockfile still present after doctor: %v", err)
	}
}
