package cli

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/julianstephens/timediary/internal/errors"
)

func TestSetCmd_RangeIsSaved(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &SetCmd{Slot: "09:00-10:00", Field: "plan", Value: "Write report"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("SetCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "3 slot(s)") {
		t.Errorf("output = %q, want slot count", out.String())
	}

	next, _ := reopen(t, ctx, testDate)
	for _, slot := range []string{"09:00", "09:30", "10:00"} {
		if got := next.App.Block(slot).Plan; got != "Write report" {
			t.Errorf("%s plan = %q after reload", slot, got)
		}
	}
	if got := next.App.Block("10:30").Plan; got != "" {
		t.Errorf("10:30 plan = %q, want untouched", got)
	}
}

func TestSetCmd_UnplannedHint(t *testing.T) {
	ctx, out := setupTestContext(t)

	cmd := &SetCmd{Slot: "11:00", Field: "actual", Value: "Meeting"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "has an actual but no plan") {
		t.Errorf("output = %q, want deviation hint", out.String())
	}
}

func TestSetCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  SetCmd
	}{
		{name: "unknown field", cmd: SetCmd{Slot: "09:00", Field: "mood", Value: "ok"}},
		{name: "bad slot", cmd: SetCmd{Slot: "09:10", Field: "plan", Value: "x"}},
		{name: "energy out of range", cmd: SetCmd{Slot: "09:00", Field: "energy", Value: "9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestContext(t)
			if err := tt.cmd.Run(ctx); err == nil {
				t.Error("SetCmd.Run() succeeded, want error")
			}
		})
	}
}

func TestReflectAndDayCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&SetCmd{Slot: "08:00", Field: "plan", Value: "Gym"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	if err := (&ReflectCmd{Text: "Good focus\nafter lunch"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	next, out := reopen(t, ctx, testDate)
	if err := (&DayCmd{}).Run(next); err != nil {
		t.Fatalf("DayCmd.Run() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"Diary for " + testDate, "Gym", "Reflection:", "Good focus", "Daily summary"} {
		if !strings.Contains(got, want) {
			t.Errorf("day output missing %q", want)
		}
	}
	if strings.Contains(got, "06:00") {
		t.Error("day output lists empty slots without --all")
	}
}

func TestBulkProjectCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)

	cmd := &BulkProjectCmd{Project: " Writing ", Slots: []string{"13:00-14:00", "16:00"}}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("BulkProjectCmd.Run() error = %v", err)
	}

	next, _ := reopen(t, ctx, testDate)
	for _, slot := range []string{"13:00", "13:30", "14:00", "16:00"} {
		if got := next.App.Block(slot).Project; got != "Writing" {
			t.Errorf("%s project = %q", slot, got)
		}
	}
	if next.App.ProjectIndex("Writing") < 0 {
		t.Error("project was not registered")
	}
}

func TestCopyYesterdayCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)

	if err := (&CopyYesterdayCmd{}).Run(ctx); !errors.Is(err, apperrors.ErrEmptyYesterday) {
		t.Fatalf("CopyYesterdayCmd.Run() with no history error = %v", err)
	}

	yesterday, _ := reopen(t, ctx, "2024-03-09")
	if err := (&SetCmd{Slot: "07:00", Field: "actual", Value: "Run"}).Run(yesterday); err != nil {
		t.Fatal(err)
	}

	today, _ := reopen(t, ctx, testDate)
	if err := (&CopyYesterdayCmd{}).Run(today); err != nil {
		t.Fatalf("CopyYesterdayCmd.Run() error = %v", err)
	}
	check, _ := reopen(t, ctx, testDate)
	if got := check.App.Block("07:00").Plan; got != "Run" {
		t.Errorf("copied plan = %q, want Run", got)
	}
}

func TestWeekCmd(t *testing.T) {
	ctx, _ := setupTestContext(t)
	if err := (&SetCmd{Slot: "09:00-09:30", Field: "actual", Value: "Deep work"}).Run(ctx); err != nil {
		t.Fatal(err)
	}

	next, out := reopen(t, ctx, testDate)
	if err := (&WeekCmd{}).Run(next); err != nil {
		t.Fatalf("WeekCmd.Run() error = %v", err)
	}
	got := out.String()
	for _, want := range []string{"2024-03-04", testDate, "1.0h"} {
		if !strings.Contains(got, want) {
			t.Errorf("week output missing %q", want)
		}
	}
}
