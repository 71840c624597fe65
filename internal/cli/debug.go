package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/timediary/internal/constants"
	apperrors "github.com/julianstephens/timediary/internal/errors"
	"github.com/julianstephens/timediary/internal/keyring"
	"github.com/julianstephens/timediary/internal/models"
)

type DebugCmd struct {
	DBPath  DebugDBPathCmd  `cmd:"" name:"db-path" help:"Show database path."`
	DumpDay DebugDumpDayCmd `cmd:"" help:"Dump a day's stored rows as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *Context) error {
	output := map[string]string{
		"path":   keyring.MaskPassword(ctx.Store.GetConfigPath()),
		"source": string(ctx.Source),
		"config": ctx.ConfigDir,
	}
	return ctx.printJSON(output)
}

type DebugDumpDayCmd struct {
	Date string `arg:"" help:"Date to dump (YYYY-MM-DD or 'today')."`
}

// dayDump is the stored state of one date, without defaults filled in.
type dayDump struct {
	Date       string             `json:"date"`
	Reflection *string            `json:"reflection"`
	Blocks     []models.TimeEntry `json:"blocks"`
}

func (cmd *DebugDumpDayCmd) Run(ctx *Context) error {
	date := cmd.Date
	if date == "today" {
		date = time.Now().Format(constants.DateFormat)
	}
	if _, err := time.Parse(constants.DateFormat, date); err != nil {
		return fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD or 'today')", date)
	}

	entries, err := ctx.Store.GetEntries(ctx.context(), date)
	if err != nil {
		return fmt.Errorf("failed to get time entries: %w", err)
	}
	dump := dayDump{Date: date, Blocks: entries}
	if dump.Blocks == nil {
		dump.Blocks = []models.TimeEntry{}
	}
	r, err := ctx.Store.GetReflection(ctx.context(), date)
	switch {
	case err == nil:
		dump.Reflection = &r.Content
	case !errors.Is(err, apperrors.ErrNotFound):
		return fmt.Errorf("failed to get reflection: %w", err)
	}
	return ctx.printJSON(dump)
}

func (c *Context) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	c.println(string(data))
	return nil
}
