package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/timediary/internal/app"
	"github.com/julianstephens/timediary/internal/backup"
	"github.com/julianstephens/timediary/internal/config"
	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/slots"
	"github.com/julianstephens/timediary/internal/storage"
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(title, description string) (bool, error)

type Context struct {
	Ctx          context.Context
	Store        storage.Provider
	App          *app.Controller
	Settings     config.Settings
	Source       config.Source
	ConfigDir    string
	SettingsPath string

	// Out receives command output. Nil means stdout.
	Out io.Writer
	// Confirm defaults to a huh prompt.
	Confirm ConfirmFunc

	loaded bool
}

// NewContext wires the controller for store using the settings file values.
func NewContext(store storage.Provider, settings config.Settings, source config.Source, configDir string) *Context {
	controller := app.New(store, app.WithLockfile(filepath.Join(configDir, constants.AutoSaveLockfileName)))
	controller.Codec().JSONDays = settings.JSONExportDays
	controller.Codec().CSVDays = settings.CSVExportDays

	return &Context{
		Ctx:          context.Background(),
		Store:        store,
		App:          controller,
		Settings:     settings,
		Source:       source,
		ConfigDir:    configDir,
		SettingsPath: config.Path(configDir),
	}
}

func (c *Context) context() context.Context {
	if c.Ctx == nil {
		return context.Background()
	}
	return c.Ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) printf(format string, args ...any) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) println(args ...any) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) confirm(title, description string) (bool, error) {
	if c.Confirm != nil {
		return c.Confirm(title, description)
	}
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		WithTheme(huh.ThemeDracula()).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// loadDay fetches the selected day once per command. Commands that save
// must load first, or the save would overwrite the stored day with defaults.
func (c *Context) loadDay() error {
	if c.loaded {
		return nil
	}
	if err := c.App.Load(c.context()); err != nil {
		return fmt.Errorf("failed to load %s: %w", c.App.Date(), err)
	}
	c.loaded = true
	return nil
}

// backupManager returns a manager for the SQLite database, or an error for
// stores that are not a local file.
func (c *Context) backupManager() (*backup.Manager, error) {
	if !storage.IsSQLite(c.Store) {
		return nil, fmt.Errorf("backups are only supported for SQLite stores (current store: %s)", c.Source)
	}
	return backup.NewManager(c.Store.GetConfigPath()), nil
}

// PerformAutomaticBackup creates a backup and only logs a failure.
func (c *Context) PerformAutomaticBackup(reason backup.Reason) {
	mgr, err := c.backupManager()
	if err != nil {
		return
	}
	if _, err := mgr.Create(c.context(), reason); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// ExpandSlots turns labels and HH:MM-HH:MM ranges (inclusive) into slot labels.
func ExpandSlots(args []string) ([]string, error) {
	var out []string
	seen := make(map[string]bool)
	add := func(label string) {
		if !seen[label] {
			seen[label] = true
			out = append(out, label)
		}
	}

	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			from, to, isRange := strings.Cut(part, "-")
			if !isRange {
				if err := slots.Validate(part); err != nil {
					return nil, err
				}
				add(part)
				continue
			}

			start, end := slots.Index(strings.TrimSpace(from)), slots.Index(strings.TrimSpace(to))
			if start < 0 || end < 0 {
				return nil, fmt.Errorf("invalid slot range %q", part)
			}
			if start > end {
				return nil, fmt.Errorf("slot range %q ends before it starts", part)
			}
			all := slots.All()
			for i := start; i <= end; i++ {
				add(all[i])
			}
		}
	}
	slots.Sort(out)
	return out, nil
}
