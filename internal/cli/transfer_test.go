package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExportCmd_ToFile(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&SetCmd{Slot: "09:00", Field: "project", Value: "Writing"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "nested", "export.json")
	if err := (&ExportCmd{Format: "json", Output: path}).Run(ctx); err != nil {
		t.Fatalf("ExportCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), path) {
		t.Errorf("output = %q, want path", out.String())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc struct {
		Projects []string `json:"projects"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not JSON: %v", err)
	}
	if len(doc.Projects) != 1 || doc.Projects[0] != "Writing" {
		t.Errorf("exported projects = %v", doc.Projects)
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".export-*"))
	if len(leftovers) != 0 {
		t.Errorf("temporary files left behind: %v", leftovers)
	}
}

func TestExportCmd_DefaultName(t *testing.T) {
	ctx, _ := setupTestContext(t)
	ctx.Settings.ExportDir = t.TempDir()

	if err := (&ExportCmd{Format: "csv"}).Run(ctx); err != nil {
		t.Fatalf("ExportCmd.Run() error = %v", err)
	}
	want := filepath.Join(ctx.Settings.ExportDir, "time-diary-pro-"+testDate+".csv")
	if _, err := os.Stat(want); err != nil {
		t.Errorf("export not written to %s: %v", want, err)
	}
}

func TestExportCmd_Stdout(t *testing.T) {
	ctx, out := setupTestContext(t)
	if err := (&ExportCmd{Format: "csv", Output: "-"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "Date,Time,Planned,Actual,Project,Energy,Distraction") {
		t.Errorf("stdout export = %q, want CSV header", out.String())
	}
}

func writeImportFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCmd_CSV(t *testing.T) {
	ctx, out := setupTestContext(t)
	path := writeImportFile(t, "diary.csv",
		"Date,Time,Planned,Actual,Project,Energy,Distraction\n"+
			testDate+",09:00,Plan,Did it,Writing,4,\n"+
			testDate+",09:15,Bad,Row,,3,\n")

	if err := (&ImportCmd{File: path, Yes: true}).Run(ctx); err != nil {
		t.Fatalf("ImportCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "Imported 1 time entries from CSV (1 skipped)") {
		t.Errorf("output = %q", out.String())
	}

	next, _ := reopen(t, ctx, testDate)
	b := next.App.Block("09:00")
	if b.Actual != "Did it" || b.Energy != 4 || b.Project != "Writing" {
		t.Errorf("imported block = %+v", b)
	}
}

func TestImportCmd_Cancelled(t *testing.T) {
	ctx, out := setupTestContext(t)
	ctx.Confirm = answer(false)
	path := writeImportFile(t, "diary.json", `{"projects":["A"],"templates":[],"entries":{}}`)

	if err := (&ImportCmd{File: path}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Import cancelled.") {
		t.Errorf("output = %q", out.String())
	}
	projects, _ := ctx.Store.GetProjects(ctx.context())
	if len(projects) != 0 {
		t.Errorf("projects = %v after a cancelled import", projects)
	}
}

func TestImportCmd_UnsupportedExtension(t *testing.T) {
	ctx, _ := setupTestContext(t)
	path := writeImportFile(t, "diary.txt", "hello")
	if err := (&ImportCmd{File: path, Yes: true}).Run(ctx); err == nil {
		t.Error("ImportCmd.Run() accepted a .txt file")
	}
}
