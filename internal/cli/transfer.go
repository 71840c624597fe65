package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/timediary/internal/config"
	"github.com/julianstephens/timediary/internal/transfer"
)

type ExportCmd struct {
	Format string `arg:"" enum:"json,csv" help:"Export format: json (projects, templates, entries) or csv (entries only)."`
	Output string `short:"o" help:"Output file, or - for stdout. Defaults to time-diary-pro-<date>.<format> in the export directory."`
}

func (c *ExportCmd) Run(ctx *Context) error {
	f, err := transfer.ParseFormat(c.Format)
	if err != nil {
		return err
	}

	if c.Output == "-" {
		w := bufio.NewWriter(ctx.out())
		if err := ctx.App.Export(ctx.context(), w, f); err != nil {
			return err
		}
		return w.Flush()
	}

	path := c.Output
	if path == "" {
		dir, err := config.ExpandPath(ctx.Settings.ExportDir)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, ctx.App.ExportFileName(f))
	}

	if err := writeExport(ctx, path, f); err != nil {
		return err
	}
	ctx.printf("✓ Exported %s to %s\n", c.Format, path)
	return nil
}

// writeExport writes to a temporary file first so a failed export never
// leaves a truncated file behind.
func writeExport(ctx *Context, path string, f transfer.Format) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*")
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	if err := ctx.App.Export(ctx.context(), w, f); err != nil {
		tmp.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move export into place: %w", err)
	}
	return nil
}

type ImportCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON or CSV file to import."`
	Yes  bool   `short:"y" help:"Import without asking for confirmation."`
}

func (c *ImportCmd) Run(ctx *Context) error {
	if _, err := transfer.ParseFormat(filepath.Ext(c.File)); err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.confirm(
			fmt.Sprintf("Import %s?", filepath.Base(c.File)),
			"Imported entries overwrite stored entries for the same date and slot.",
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.println("Import cancelled.")
			return nil
		}
	}

	res, err := ctx.App.Import(ctx.context(), c.File)
	if err != nil {
		return err
	}
	ctx.printf("✓ %s\n", res.Summary())
	if res.Projects > 0 || res.Templates > 0 {
		ctx.printf("  %d project(s), %d template(s)\n", res.Projects, res.Templates)
	}
	for _, w := range res.Warnings {
		ctx.printf("  ⚠ %v\n", w)
	}
	return nil
}
