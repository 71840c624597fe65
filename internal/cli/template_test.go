package cli

import (
	"strings"
	"testing"
)

func saveTestTemplate(t *testing.T, ctx *Context, name string) {
	t.Helper()
	if err := (&SetCmd{Slot: "09:00-11:00", Field: "plan", Value: "Focus"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&TemplateSaveCmd{Name: name}).Run(ctx); err != nil {
		t.Fatalf("TemplateSaveCmd.Run() error = %v", err)
	}
}

func TestTemplateSaveListLoad(t *testing.T) {
	ctx, out := setupTestContext(t)
	saveTestTemplate(t, ctx, "Workday")

	out.Reset()
	if err := (&TemplateListCmd{}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Workday") || !strings.Contains(out.String(), "2.5h planned") {
		t.Errorf("list output = %q", out.String())
	}

	other, _ := reopen(t, ctx, "2024-03-11")
	if err := (&TemplateLoadCmd{Name: "Workday"}).Run(other); err != nil {
		t.Fatalf("TemplateLoadCmd.Run() error = %v", err)
	}
	check, _ := reopen(t, ctx, "2024-03-11")
	if got := check.App.Block("10:30").Plan; got != "Focus" {
		t.Errorf("applied plan = %q, want Focus", got)
	}
}

func TestTemplateLoadMissing(t *testing.T) {
	ctx, _ := setupTestContext(t)
	err := (&TemplateLoadCmd{Name: "nope"}).Run(ctx)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("TemplateLoadCmd.Run() error = %v, want not found", err)
	}
}

func TestTemplateDeleteCmd(t *testing.T) {
	tests := []struct {
		name        string
		yes         bool
		confirm     bool
		wantDeleted bool
		wantOutput  string
	}{
		{name: "declined", confirm: false, wantDeleted: false, wantOutput: "Deletion cancelled."},
		{name: "confirmed", confirm: true, wantDeleted: true, wantOutput: "deleted"},
		{name: "skip prompt", yes: true, wantDeleted: true, wantOutput: "deleted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, out := setupTestContext(t)
			saveTestTemplate(t, ctx, "Workday")
			if !tt.yes {
				ctx.Confirm = answer(tt.confirm)
			}

			out.Reset()
			if err := (&TemplateDeleteCmd{Name: "Workday", Yes: tt.yes}).Run(ctx); err != nil {
				t.Fatalf("TemplateDeleteCmd.Run() error = %v", err)
			}
			if !strings.Contains(out.String(), tt.wantOutput) {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOutput)
			}

			list, err := ctx.Store.GetTemplates(ctx.context())
			if err != nil {
				t.Fatal(err)
			}
			if deleted := len(list) == 0; deleted != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", deleted, tt.wantDeleted)
			}
		})
	}
}

func TestTemplateDeleteMissing(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&TemplateDeleteCmd{Name: "nope", Yes: true}).Run(ctx); err == nil {
		t.Error("TemplateDeleteCmd.Run() on a missing template succeeded")
	}
}
