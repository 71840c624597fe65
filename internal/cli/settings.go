package cli

import (
	"fmt"
	"time"

	"github.com/julianstephens/timediary/internal/config"
	"github.com/julianstephens/timediary/internal/keyring"
	"github.com/julianstephens/timediary/internal/storage/postgres"
)

// SettingsCmd shows or updates the YAML settings file.
type SettingsCmd struct {
	List bool `help:"List current settings."`

	Store            *string        `help:"Default SQLite path or PostgreSQL URL (without password)."`
	AutoSaveInterval *time.Duration `name:"autosave-interval" help:"How often the TUI saves, e.g. 30s."`
	JSONExportDays   *int           `name:"json-export-days" help:"Days of entries in JSON exports."`
	CSVExportDays    *int           `name:"csv-export-days" help:"Days of entries in CSV exports."`
	ExportDir        *string        `help:"Directory export files are written to."`
}

func (c *SettingsCmd) Run(ctx *Context) error {
	settings, err := config.Load(ctx.SettingsPath)
	if err != nil {
		return err
	}

	if c.List {
		ctx.printf("Settings file: %s\n\n", ctx.SettingsPath)
		ctx.printf("  Store:              %s\n", keyring.MaskPassword(settings.Store))
		ctx.printf("  Auto-save interval: %s\n", settings.AutoSaveInterval)
		ctx.printf("  JSON export days:   %d\n", settings.JSONExportDays)
		ctx.printf("  CSV export days:    %d\n", settings.CSVExportDays)
		ctx.printf("  Export directory:   %s\n", settings.ExportDir)
		ctx.printf("\nActive store (%s): %s\n", ctx.Source, keyring.MaskPassword(ctx.Store.GetConfigPath()))
		return nil
	}

	updated := false
	if c.Store != nil {
		if postgres.IsConnString(*c.Store) {
			if _, err := postgres.ValidateConnString(*c.Store); err != nil {
				return fmt.Errorf("refusing to write connection string to settings: %w", err)
			}
		}
		settings.Store = *c.Store
		updated = true
	}
	if c.AutoSaveInterval != nil {
		if *c.AutoSaveInterval < time.Second {
			return fmt.Errorf("auto-save interval must be at least 1s, got %s", *c.AutoSaveInterval)
		}
		settings.AutoSaveInterval = *c.AutoSaveInterval
		updated = true
	}
	if c.JSONExportDays != nil {
		if *c.JSONExportDays < 1 {
			return fmt.Errorf("json export days must be positive")
		}
		settings.JSONExportDays = *c.JSONExportDays
		updated = true
	}
	if c.CSVExportDays != nil {
		if *c.CSVExportDays < 1 {
			return fmt.Errorf("csv export days must be positive")
		}
		settings.CSVExportDays = *c.CSVExportDays
		updated = true
	}
	if c.ExportDir != nil {
		settings.ExportDir = *c.ExportDir
		updated = true
	}

	if !updated {
		ctx.println("No changes specified. Use --list to view settings or flags to update them.")
		return nil
	}

	if err := config.Save(ctx.SettingsPath, settings); err != nil {
		return err
	}
	ctx.Settings = settings
	ctx.println("Settings updated successfully.")
	return nil
}
