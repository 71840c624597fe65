package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/timediary/internal/cli"
	"github.com/julianstephens/timediary/internal/config"
	"github.com/julianstephens/timediary/internal/constants"
	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/keyring"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/storage"
)

var CLI struct {
	Version kong.VersionFlag
	Config  string `help:"SQLite database path or PostgreSQL connection string. PostgreSQL passwords must come from the keyring, TIMEDIARY_DB_CONNECTION or .pgpass, never this flag." type:"string"`
	Debug   bool   `help:"Log debug output to stderr."`
	Date    string `help:"Day to work on (YYYY-MM-DD). Defaults to today."`

	Init          cli.InitCmd          `cmd:"" help:"Initialize timediary storage."`
	Doctor        cli.DoctorCmd        `cmd:"" help:"Run health checks and diagnostics."`
	Tui           cli.TuiCmd           `cmd:"" help:"Launch the interactive diary." default:"1"`
	Day           cli.DayCmd           `cmd:"" help:"Show a day's blocks and summary."`
	Set           cli.SetCmd           `cmd:"" help:"Edit a field of one slot or a range of slots."`
	Reflect       cli.ReflectCmd       `cmd:"" help:"Write the day's reflection."`
	CopyYesterday cli.CopyYesterdayCmd `cmd:"" name:"copy-yesterday" help:"Copy yesterday's actuals into today's plan."`
	BulkProject   cli.BulkProjectCmd   `cmd:"" name:"bulk-project" help:"Tag several slots with one project."`
	Week          cli.WeekCmd          `cmd:"" help:"Show the seven days ending on the selected day."`
	Template      struct {
		Save   cli.TemplateSaveCmd   `cmd:"" help:"Save the day's plan as a template."`
		Load   cli.TemplateLoadCmd   `cmd:"" help:"Apply a template to the day."`
		Delete cli.TemplateDeleteCmd `cmd:"" help:"Delete a template."`
		List   cli.TemplateListCmd   `cmd:"" help:"List templates." default:"1"`
	} `cmd:"" help:"Manage day templates."`
	Export cli.ExportCmd `cmd:"" help:"Export recent days as JSON or CSV."`
	Import cli.ImportCmd `cmd:"" help:"Import a JSON or CSV export."`
	Backup struct {
		Create  cli.BackupCreateCmd  `cmd:"" help:"Create a manual backup." default:"1"`
		List    cli.BackupListCmd    `cmd:"" help:"List available backups."`
		Restore cli.BackupRestoreCmd `cmd:"" help:"Restore from a backup."`
	} `cmd:"" help:"Manage database backups."`
	Keyring struct {
		Set    cli.KeyringSetCmd    `cmd:"" help:"Store a PostgreSQL connection string in the OS keyring."`
		Get    cli.KeyringGetCmd    `cmd:"" help:"Show the stored connection string, password masked."`
		Delete cli.KeyringDeleteCmd `cmd:"" help:"Remove the stored connection string."`
		Status cli.KeyringStatusCmd `cmd:"" help:"Show keyring availability." default:"1"`
	} `cmd:"" help:"Manage the database connection string in the OS keyring."`
	Settings cli.SettingsCmd `cmd:"" help:"Show or change settings."`
	Inspect  cli.DebugCmd    `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
}

// skipLoad lists the commands that open the store themselves or never use it.
var skipLoad = []string{"init", "doctor", "keyring", "settings", "debug db-path"}

func needsLoad(command string) bool {
	for _, prefix := range skipLoad {
		if command == prefix || strings.HasPrefix(command, prefix+" ") {
			return false
		}
	}
	return true
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Half-hour time diary: plan the day, record what happened, review the drift."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{"version": constants.Version},
	)

	settingsDir, err := config.Dir(flagPath(CLI.Config))
	if err != nil {
		apperrors.Fatal(err)
	}
	settingsPath := config.Path(settingsDir)
	settings, err := config.Load(settingsPath)
	if err != nil {
		apperrors.Fatal(err)
	}

	resolver := config.Resolver{Getenv: os.Getenv, Keyring: keyring.GetConnectionString}
	target, source, err := resolver.Resolve(CLI.Config, settings)
	if err != nil {
		apperrors.Fatal(err)
	}

	configDir, err := config.Dir(target)
	if err != nil {
		apperrors.Fatal(err)
	}
	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	logger.Debug("Resolved store", "source", source, "target", keyring.MaskPassword(target))

	var store storage.Provider
	if source.Secret() {
		store, err = storage.NewFromSecret(target)
	} else {
		store, err = storage.New(target)
	}
	if err != nil {
		apperrors.Fatal(err)
	}

	appCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if needsLoad(ctx.Command()) {
		if err := store.Load(appCtx); err != nil {
			apperrors.Fatal(err)
		}
	}

	cliCtx := cli.NewContext(store, settings, source, configDir)
	cliCtx.Ctx = appCtx
	cliCtx.SettingsPath = settingsPath
	if CLI.Date != "" {
		if err := cliCtx.App.SetDate(CLI.Date); err != nil {
			apperrors.Fatal(err)
		}
	}

	err = ctx.Run(cliCtx)
	if cerr := store.Close(); cerr != nil {
		logger.Warn("Failed to close store", "error", cerr)
	}
	apperrors.Fatal(err)
}

// flagPath returns the --config value when it names a file, for locating
// the settings file beside the database.
func flagPath(flag string) string {
	if flag == "" || strings.Contains(flag, "://") {
		return ""
	}
	p, err := config.ExpandPath(flag)
	if err != nil {
		return ""
	}
	return p
}
