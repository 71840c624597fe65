package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(context.Background()); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitIsIdempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "diary.db")

	store := NewStore(path)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("first Init() failed: %v", err)
	}
	store.Close()

	again := NewStore(path)
	if err := again.Init(ctx); err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	defer again.Close()

	for _, table := range []string{"projects", "templates", "reflections", "time_entries"} {
		exists, err := again.tableExists(ctx, table)
		if err != nil {
			t.Fatalf("tableExists(%s) error: %v", table, err)
		}
		if !exists {
			t.Errorf("table %s missing after Init", table)
		}
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file", func(t *testing.T) {
		store := NewStore(filepath.Join(t.TempDir(), "absent.db"))
		if err := store.Load(ctx); err == nil {
			t.Error("Load() should fail before Init")
		}
	})

	t.Run("initialized", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "diary.db")
		if err := NewStore(path).Init(ctx); err != nil {
			t.Fatal(err)
		}
		store := NewStore(path)
		defer store.Close()
		if err := store.Load(ctx); err != nil {
			t.Errorf("Load() error = %v", err)
		}
	})
}

func TestProjects(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if err := store.UpsertProjects(ctx, []string{"Work", "Study", "Work", ""}); err != nil {
		t.Fatalf("UpsertProjects() error = %v", err)
	}
	if err := store.UpsertProjects(ctx, []string{"Study", "work"}); err != nil {
		t.Fatalf("UpsertProjects() error = %v", err)
	}

	got, err := store.GetProjects(ctx)
	if err != nil {
		t.Fatalf("GetProjects() error = %v", err)
	}
	want := []string{"Work", "Study", "work"}
	if len(got) != len(want) {
		t.Fatalf("GetProjects() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("GetProjects()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTemplates(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	created := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	tpl := models.Template{
		ID:        "tpl-1",
		Name:      "Deep work",
		Data:      models.Snapshot{"08:00": {Plan: "Write", Project: "Work", Energy: 4}},
		CreatedAt: created,
	}
	if err := store.UpsertTemplates(ctx, tpl); err != nil {
		t.Fatalf("UpsertTemplates() error = %v", err)
	}

	got, err := store.GetTemplate(ctx, "Deep work")
	if err != nil {
		t.Fatalf("GetTemplate() error = %v", err)
	}
	if got.ID != "tpl-1" || !got.CreatedAt.Equal(created) {
		t.Errorf("unexpected template %+v", got)
	}
	if got.Data["08:00"] != tpl.Data["08:00"] {
		t.Errorf("Data[08:00] = %+v, want %+v", got.Data["08:00"], tpl.Data["08:00"])
	}

	// Upsert by name overwrites data and timestamp but keeps the id
	later := created.Add(time.Hour)
	if err := store.UpsertTemplates(ctx, models.Template{ID: "tpl-2", Name: "Deep work", Data: models.Snapshot{}, CreatedAt: later}); err != nil {
		t.Fatalf("UpsertTemplates() overwrite error = %v", err)
	}
	got, _ = store.GetTemplate(ctx, "Deep work")
	if got.ID != "tpl-1" || len(got.Data) != 0 || !got.CreatedAt.Equal(later) {
		t.Errorf("overwrite not applied: %+v", got)
	}

	all, err := store.GetTemplates(ctx)
	if err != nil || len(all) != 1 {
		t.Fatalf("GetTemplates() = %v, %v", all, err)
	}

	if err := store.DeleteTemplate(ctx, "Deep work"); err != nil {
		t.Fatalf("DeleteTemplate() error = %v", err)
	}
	if _, err := store.GetTemplate(ctx, "Deep work"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetTemplate() after delete error = %v, want ErrNotFound", err)
	}
	if err := store.DeleteTemplate(ctx, "Deep work"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("DeleteTemplate() twice error = %v, want ErrNotFound", err)
	}
}

func TestEntries(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	entries := []models.TimeEntry{
		{Date: "2024-03-01", Slot: "09:00", Block: models.Block{Plan: "Read", Energy: 3}},
		{Date: "2024-03-01", Slot: "08:30", Block: models.Block{Plan: "Write", Actual: "Write", Project: "Work", Energy: 4}},
		{Date: "2024-03-02", Slot: "10:00", Block: models.Block{Actual: "Email", Distraction: "inbox", Energy: 2}},
	}
	if err := store.UpsertEntries(ctx, entries); err != nil {
		t.Fatalf("UpsertEntries() error = %v", err)
	}

	day, err := store.GetEntries(ctx, "2024-03-01")
	if err != nil {
		t.Fatalf("GetEntries() error = %v", err)
	}
	if len(day) != 2 || day[0].Slot != "08:30" || day[1].Slot != "09:00" {
		t.Fatalf("GetEntries() = %+v", day)
	}
	if day[0].Block != entries[1].Block {
		t.Errorf("block = %+v, want %+v", day[0].Block, entries[1].Block)
	}

	// Upsert on (date, time_slot) overwrites
	if err := store.UpsertEntries(ctx, []models.TimeEntry{{Date: "2024-03-01", Slot: "09:00", Block: models.Block{Plan: "Nap", Energy: 1}}}); err != nil {
		t.Fatal(err)
	}
	day, _ = store.GetEntries(ctx, "2024-03-01")
	if len(day) != 2 || day[1].Block.Plan != "Nap" {
		t.Errorf("overwrite not applied: %+v", day)
	}

	empty, err := store.GetEntries(ctx, "2030-01-01")
	if err != nil || len(empty) != 0 {
		t.Errorf("GetEntries() on empty day = %v, %v", empty, err)
	}

	ranged, err := store.GetEntriesInRange(ctx, "2024-03-01", "2024-03-02")
	if err != nil || len(ranged) != 3 {
		t.Fatalf("GetEntriesInRange() = %v, %v", ranged, err)
	}
	if ranged[2].Date != "2024-03-02" {
		t.Errorf("range not ordered by date: %+v", ranged)
	}
}

func TestReflections(t *testing.T) {
	ctx := context.Background()
	store := setupTestStore(t)

	if _, err := store.GetReflection(ctx, "2024-03-01"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("GetReflection() on empty store error = %v, want ErrNotFound", err)
	}

	for _, r := range []models.Reflection{
		{Date: "2024-03-01", Content: "Good focus"},
		{Date: "2024-03-01", Content: "Good focus, late finish"},
		{Date: "2024-03-05", Content: "Tired"},
	} {
		if err := store.UpsertReflection(ctx, r); err != nil {
			t.Fatalf("UpsertReflection() error = %v", err)
		}
	}

	r, err := store.GetReflection(ctx, "2024-03-01")
	if err != nil || r.Content != "Good focus, late finish" {
		t.Errorf("GetReflection() = %+v, %v", r, err)
	}

	all, err := store.GetReflectionsInRange(ctx, "2024-03-01", "2024-03-04")
	if err != nil || len(all) != 1 {
		t.Errorf("GetReflectionsInRange() = %+v, %v", all, err)
	}
}
