package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/timediary/internal/config"
	"github.com/julianstephens/timediary/internal/storage/sqlite"
)

func newUninitializedContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "fresh.db"))
	t.Cleanup(func() { store.Close() })

	ctx := NewContext(store, config.Default(), config.SourceFlag, dir)
	out := &bytes.Buffer{}
	ctx.Out = out
	return ctx, out
}

func TestInitCmd_WritesSettings(t *testing.T) {
	ctx, out := newUninitializedContext(t)

	if err := (&InitCmd{}).Run(ctx); err != nil {
		t.Fatalf("InitCmd.Run() error = %v", err)
	}
	if _, err := os.Stat(ctx.Store.GetConfigPath()); err != nil {
		t.Errorf("database not created: %v", err)
	}
	if _, err := os.Stat(ctx.SettingsPath); err != nil {
		t.Errorf("settings file not written: %v", err)
	}
	if !strings.Contains(out.String(), "Initialized timediary storage") {
		t.Errorf("output = %q", out.String())
	}
}

func TestInitCmd_ForceResets(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&SetCmd{Slot: "09:00", Field: "plan", Value: "Old"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	if err := (&InitCmd{Force: true}).Run(ctx); err != nil {
		t.Fatalf("InitCmd.Run() error = %v", err)
	}
	entries, err := ctx.Store.GetEntries(context.Background(), testDate)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("forced init kept %d entries", len(entries))
	}
}

func TestInitCmd_CopiesFromSource(t *testing.T) {
	src, _ := setupTestContext(t)
	if err := (&BulkProjectCmd{Project: "Writing", Slots: []string{"09:00-09:30"}}).Run(src); err != nil {
		t.Fatal(err)
	}
	if err := (&ReflectCmd{Text: "Solid day"}).Run(src); err != nil {
		t.Fatal(err)
	}
	if err := (&TemplateSaveCmd{Name: "Workday"}).Run(src); err != nil {
		t.Fatal(err)
	}

	dst, out := newUninitializedContext(t)
	if err := (&InitCmd{Source: src.Store.GetConfigPath()}).Run(dst); err != nil {
		t.Fatalf("InitCmd.Run() error = %v", err)
	}
	for _, want := range []string{"Copied 1 projects", "Copied 1 templates", "Copied 1 reflections", "Copied 36 time entries"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q: %s", want, out.String())
		}
	}

	r, err := dst.Store.GetReflection(context.Background(), testDate)
	if err != nil || r.Content != "Solid day" {
		t.Errorf("copied reflection = %+v, %v", r, err)
	}
}

func TestDebugDumpDayCmd(t *testing.T) {
	ctx, out := setupTestContext(t)

	if err := (&DebugDumpDayCmd{Date: testDate}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"reflection": null`) || !strings.Contains(out.String(), `"blocks": []`) {
		t.Errorf("empty day dump = %s", out.String())
	}

	if err := (&ReflectCmd{Text: "Noted"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&DebugDumpDayCmd{Date: testDate}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), `"reflection": "Noted"`) {
		t.Errorf("dump = %s", out.String())
	}

	if err := (&DebugDumpDayCmd{Date: "10/03/2024"}).Run(ctx); err == nil {
		t.Error("DebugDumpDayCmd.Run() accepted a malformed date")
	}
}
