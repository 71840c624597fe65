package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/timediary/internal/config"
	"github.com/julianstephens/timediary/internal/storage"
)

// Bounds wide enough to select every stored date.
const (
	firstDate = "0001-01-01"
	lastDate  = "9999-12-31"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting an existing SQLite database before initialization."`
	Source string `help:"Database path or connection string to copy existing data from."`
}

func (c *InitCmd) Run(ctx *Context) error {
	if c.Force {
		if !storage.IsSQLite(ctx.Store) {
			return errors.New("--force only applies to SQLite stores")
		}
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDB, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDB
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(ctx.context()); err != nil {
		return err
	}
	ctx.printf("Initialized timediary storage at: %s\n", ctx.Store.GetConfigPath())

	if _, err := os.Stat(ctx.SettingsPath); os.IsNotExist(err) {
		if err := config.Save(ctx.SettingsPath, ctx.Settings); err != nil {
			return err
		}
		ctx.printf("Wrote default settings to: %s\n", ctx.SettingsPath)
	}

	if c.Source != "" {
		ctx.printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) copyFrom(ctx *Context) error {
	source, err := storage.New(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(ctx.context()); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	projects, err := source.GetProjects(ctx.context())
	if err != nil {
		return fmt.Errorf("failed to get projects from source: %w", err)
	}
	if len(projects) > 0 {
		if err := ctx.Store.UpsertProjects(ctx.context(), projects); err != nil {
			return fmt.Errorf("failed to save projects: %w", err)
		}
	}
	ctx.printf("  Copied %d projects\n", len(projects))

	templates, err := source.GetTemplates(ctx.context())
	if err != nil {
		return fmt.Errorf("failed to get templates from source: %w", err)
	}
	if len(templates) > 0 {
		if err := ctx.Store.UpsertTemplates(ctx.context(), templates...); err != nil {
			return fmt.Errorf("failed to save templates: %w", err)
		}
	}
	ctx.printf("  Copied %d templates\n", len(templates))

	reflections, err := source.GetReflectionsInRange(ctx.context(), firstDate, lastDate)
	if err != nil {
		return fmt.Errorf("failed to get reflections from source: %w", err)
	}
	for _, r := range reflections {
		if err := ctx.Store.UpsertReflection(ctx.context(), r); err != nil {
			return fmt.Errorf("failed to save reflection for %s: %w", r.Date, err)
		}
	}
	ctx.printf("  Copied %d reflections\n", len(reflections))

	entries, err := source.GetEntriesInRange(ctx.context(), firstDate, lastDate)
	if err != nil {
		return fmt.Errorf("failed to get time entries from source: %w", err)
	}
	if len(entries) > 0 {
		if err := ctx.Store.UpsertEntries(ctx.context(), entries); err != nil {
			return fmt.Errorf("failed to save time entries: %w", err)
		}
	}
	ctx.printf("  Copied %d time entries\n", len(entries))
	return nil
}
