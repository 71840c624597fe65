package backup

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "timediary.db")

	store := sqlite.NewStore(dbPath)
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	defer store.Close()

	entries := []models.TimeEntry{
		{Date: "2024-03-10", Slot: "08:00", Block: models.Block{Plan: "Write", Energy: 3}},
		{Date: "2024-03-10", Slot: "08:30", Block: models.Block{Actual: "Read", Energy: 4}},
	}
	if err := store.UpsertEntries(context.Background(), entries); err != nil {
		t.Fatalf("failed to seed store: %v", err)
	}
	return dbPath
}

func countEntries(t *testing.T, path string) int {
	t.Helper()
	store := sqlite.NewStore(path)
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("failed to load %s: %v", path, err)
	}
	defer store.Close()

	entries, err := store.GetEntries(context.Background(), "2024-03-10")
	if err != nil {
		t.Fatalf("failed to read entries: %v", err)
	}
	return len(entries)
}

// steppingClock advances one second per call.
func steppingClock() func() time.Time {
	ts := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		ts = ts.Add(time.Second)
		return ts
	}
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	info, err := mgr.Create(context.Background(), ReasonManual)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if filepath.Dir(info.Path) != mgr.Dir() {
		t.Errorf("backup written to %s, want %s", filepath.Dir(info.Path), mgr.Dir())
	}
	if !strings.HasSuffix(info.Path, "_manual.db") {
		t.Errorf("backup name %s does not carry its reason", filepath.Base(info.Path))
	}
	if got := countEntries(t, info.Path); got != 2 {
		t.Errorf("backup holds %d entries, want 2", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background(), ReasonManual); err == nil {
		t.Error("Create() should fail when the database does not exist")
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()
	mgr.keep = 3

	var last Info
	for i := 0; i < 5; i++ {
		info, err := mgr.Create(context.Background(), ReasonManual)
		if err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
		last = info
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("List() returned %d backups, want 3", len(backups))
	}
	if backups[0].Path != last.Path {
		t.Errorf("newest backup = %s, want %s", backups[0].Path, last.Path)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
}

func TestUniqueNames(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	fixed := time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC)
	mgr.now = func() time.Time { return fixed }

	seen := make(map[string]bool)
	for i := 0; i < 4; i++ {
		info, err := mgr.Create(context.Background(), ReasonPreImport)
		if err != nil {
			t.Fatalf("Create() #%d error = %v", i, err)
		}
		if seen[info.Path] {
			t.Errorf("duplicate backup path %s", info.Path)
		}
		seen[info.Path] = true
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)

	if _, err := mgr.Create(context.Background(), ReasonPreImport); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "timediary-garbage.db", "timediary-20240310T080000.000.db"} {
		os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("List() returned %d backups, want 1", len(backups))
	}
	if backups[0].Reason != ReasonPreImport || backups[0].Size == 0 {
		t.Errorf("List()[0] = %+v", backups[0])
	}
}

func TestListWithoutDirectory(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "timediary.db"))
	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Errorf("List() = %v, %v; want empty", backups, err)
	}
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	mgr.now = steppingClock()

	saved, err := mgr.Create(ctx, ReasonManual)
	if err != nil {
		t.Fatal(err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(ctx); err != nil {
		t.Fatal(err)
	}
	extra := []models.TimeEntry{{Date: "2024-03-10", Slot: "09:00", Block: models.Block{Plan: "Later", Energy: 3}}}
	if err := store.UpsertEntries(ctx, extra); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if got := countEntries(t, dbPath); got != 3 {
		t.Fatalf("expected 3 entries before restore, got %d", got)
	}

	previous, err := mgr.Restore(ctx, saved.Path)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := countEntries(t, dbPath); got != 2 {
		t.Errorf("expected 2 entries after restore, got %d", got)
	}

	if previous == nil || previous.Reason != ReasonPreRestore {
		t.Fatalf("Restore() should report the pre-restore backup, got %+v", previous)
	}
	if got := countEntries(t, previous.Path); got != 3 {
		t.Errorf("pre-restore backup holds %d entries, want 3", got)
	}
}

func TestRestoreRejectsInvalidFiles(t *testing.T) {
	ctx := context.Background()
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath)
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	os.WriteFile(garbage, []byte("not a database"), 0600)

	tests := []struct {
		name string
		path string
	}{
		{"missing", filepath.Join(dir, "absent.db")},
		{"not sqlite", garbage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.Restore(ctx, tt.path); err == nil {
				t.Error("Restore() should fail")
			}
			if got := countEntries(t, dbPath); got != 2 {
				t.Errorf("database changed by a failed restore: %d entries", got)
			}
		})
	}
}
