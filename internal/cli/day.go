package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/timediary/internal/day"
	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/tui"
)

type DayCmd struct {
	All bool `help:"Show every slot, including empty ones."`
}

func (c *DayCmd) Run(ctx *Context) error {
	if err := ctx.loadDay(); err != nil {
		return err
	}

	ctx.printf("Diary for %s\n\n", ctx.App.Date())
	ctx.println(tui.RenderGrid(ctx.App.Snapshot(), c.All, ctx.App.ProjectIndex))
	ctx.println()
	ctx.println(tui.RenderSummary(ctx.App.Summary(), ctx.App.ProjectIndex))

	if r := ctx.App.Reflection(); r != "" {
		ctx.printf("\nReflection:\n  %s\n", strings.ReplaceAll(r, "\n", "\n  "))
	}
	return nil
}

type SetCmd struct {
	Slot  string `arg:"" help:"Time slot (HH:MM) or range (HH:MM-HH:MM)."`
	Field string `arg:"" help:"Field to edit: plan, actual, project, energy or distraction."`
	Value string `arg:"" optional:"" help:"New value. Omit to clear the field."`
}

func (c *SetCmd) Run(ctx *Context) error {
	field, err := day.ParseField(c.Field)
	if err != nil {
		return err
	}
	labels, err := ExpandSlots([]string{c.Slot})
	if err != nil {
		return err
	}
	if err := ctx.loadDay(); err != nil {
		return err
	}

	for _, label := range labels {
		if err := ctx.App.UpdateBlock(label, field, c.Value); err != nil {
			return fmt.Errorf("failed to update %s: %w", label, err)
		}
	}
	if err := ctx.App.Save(ctx.context()); err != nil {
		return err
	}

	ctx.printf("✓ Updated %s on %d slot(s) for %s\n", c.Field, len(labels), ctx.App.Date())
	for _, label := range labels {
		b := ctx.App.Block(label)
		if b.Unplanned() && b.Distraction == "" {
			ctx.printf("ℹ %s has an actual but no plan; record why with: set %s distraction \"...\"\n", label, label)
			break
		}
	}
	return nil
}

type ReflectCmd struct {
	Text string `arg:"" help:"Reflection for the day. An empty string clears it."`
}

func (c *ReflectCmd) Run(ctx *Context) error {
	if err := ctx.loadDay(); err != nil {
		return err
	}
	ctx.App.SetReflection(c.Text)
	if err := ctx.App.Save(ctx.context()); err != nil {
		return err
	}
	ctx.printf("✓ Reflection saved for %s\n", ctx.App.Date())
	return nil
}

type CopyYesterdayCmd struct{}

func (c *CopyYesterdayCmd) Run(ctx *Context) error {
	if err := ctx.loadDay(); err != nil {
		return err
	}
	if err := ctx.App.CopyYesterday(ctx.context()); err != nil {
		if errors.Is(err, apperrors.ErrEmptyYesterday) {
			return fmt.Errorf("nothing to copy: %w", err)
		}
		return err
	}
	if err := ctx.App.Save(ctx.context()); err != nil {
		return err
	}
	ctx.printf("✓ Yesterday's actuals copied to the plan for %s\n", ctx.App.Date())
	return nil
}

type BulkProjectCmd struct {
	Project string   `arg:"" help:"Project to tag the slots with."`
	Slots   []string `arg:"" help:"Slots (HH:MM) or ranges (HH:MM-HH:MM)."`
}

func (c *BulkProjectCmd) Run(ctx *Context) error {
	labels, err := ExpandSlots(c.Slots)
	if err != nil {
		return err
	}
	if err := ctx.loadDay(); err != nil {
		return err
	}
	if err := ctx.App.ApplyBulkProject(labels, c.Project); err != nil {
		return err
	}
	if err := ctx.App.Save(ctx.context()); err != nil {
		return err
	}
	ctx.printf("✓ Applied %q to %d block(s)\n", strings.TrimSpace(c.Project), len(labels))
	return nil
}

type WeekCmd struct{}

func (c *WeekCmd) Run(ctx *Context) error {
	if err := ctx.loadDay(); err != nil {
		return err
	}
	week := ctx.App.Week(ctx.context())
	ctx.printf("Week ending %s\n\n", ctx.App.Date())
	ctx.println(tui.RenderWeek(week, ctx.App.ProjectIndex))
	if n := len(week.FailedDays); n > 0 {
		ctx.printf("\n⚠ %d day(s) could not be fetched and count as zero: %s\n", n, strings.Join(week.FailedDays, ", "))
	}
	return nil
}
