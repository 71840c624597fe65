package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timediary/internal/backup"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/tui"
)

type TuiCmd struct {
	NoBackup bool `help:"Skip the backup taken on startup." name:"no-backup"`
}

func (c *TuiCmd) Run(ctx *Context) error {
	if err := ctx.loadDay(); err != nil {
		return err
	}
	if !c.NoBackup {
		ctx.PerformAutomaticBackup(backup.ReasonStartup)
	}

	saveCtx, cancel := context.WithCancel(ctx.context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := ctx.App.AutoSave(saveCtx, ctx.Settings.AutoSaveInterval); err != nil {
			logger.Warn("Auto-save not running", "error", err)
		}
	}()
	defer func() {
		cancel()
		<-done
	}()

	model := tui.NewModel(ctx.context(), ctx.App, tui.Options{ExportDir: ctx.Settings.ExportDir})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx.context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui exited: %w", err)
	}
	return nil
}
