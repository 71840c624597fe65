package cli

import (
	"errors"
	"fmt"

	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/summary"
	"github.com/julianstephens/timediary/internal/templates"
)

type TemplateSaveCmd struct {
	Name string `arg:"" help:"Template name. An existing template with this name is overwritten."`
}

func (c *TemplateSaveCmd) Run(ctx *Context) error {
	if err := ctx.loadDay(); err != nil {
		return err
	}
	if err := ctx.App.SaveTemplate(ctx.context(), c.Name); err != nil {
		return fmt.Errorf("template save failed: %w", err)
	}
	ctx.printf("✓ Saved %s as template %q\n", ctx.App.Date(), c.Name)
	return nil
}

type TemplateLoadCmd struct {
	Name string `arg:"" help:"Template to apply to the selected day."`
}

func (c *TemplateLoadCmd) Run(ctx *Context) error {
	if err := ctx.loadDay(); err != nil {
		return err
	}
	if err := ctx.App.ApplyTemplate(c.Name); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("template %q not found", c.Name)
		}
		return err
	}
	if err := ctx.App.Save(ctx.context()); err != nil {
		return err
	}
	ctx.printf("✓ Template %q applied to %s\n", c.Name, ctx.App.Date())
	return nil
}

type TemplateDeleteCmd struct {
	Name string `arg:"" help:"Template to delete."`
	Yes  bool   `short:"y" help:"Delete without asking for confirmation."`
}

func (c *TemplateDeleteCmd) Run(ctx *Context) error {
	confirm := func(name string) (bool, error) {
		if c.Yes {
			return true, nil
		}
		return ctx.confirm(fmt.Sprintf("Delete template %q?", name), "This cannot be undone.")
	}

	err := ctx.App.DeleteTemplate(ctx.context(), c.Name, templates.ConfirmFunc(confirm))
	switch {
	case errors.Is(err, templates.ErrDeclined):
		ctx.println("Deletion cancelled.")
		return nil
	case errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("template %q not found", c.Name)
	case err != nil:
		return err
	}
	ctx.printf("✓ Template %q deleted\n", c.Name)
	return nil
}

type TemplateListCmd struct{}

func (c *TemplateListCmd) Run(ctx *Context) error {
	list, err := ctx.App.Templates(ctx.context())
	if err != nil {
		return err
	}
	if len(list) == 0 {
		ctx.println("No templates saved.")
		return nil
	}

	ctx.printf("Templates (%d):\n\n", len(list))
	for _, t := range list {
		s := summary.Compute(t.Data)
		ctx.printf("  %-24s %5.1fh planned  %2d project(s)  created %s\n",
			t.Name, s.PlannedHours, len(s.Projects), t.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
	return nil
}
