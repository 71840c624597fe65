// Package tui is the interactive diary: a slot grid for the selected day,
// a weekly view and the template list.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timediary/internal/app"
	"github.com/julianstephens/timediary/internal/day"
	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/transfer"
	"github.com/julianstephens/timediary/internal/tui/components/grid"
	"github.com/julianstephens/timediary/internal/tui/components/templatelist"
)

type SessionState int

const (
	StateDay SessionState = iota
	StateWeek
	StateTemplates
	StateEditing
	StateReflection
	StateConfirmDelete
)

// tabCount is the number of states reachable with tab.
const tabCount = 3

// editTarget says what the text input is collecting.
type editTarget int

const (
	editField editTarget = iota
	editBulkProject
	editTemplateName
	editImportPath
)

const refreshInterval = time.Second

type (
	loadedMsg    struct{ err error }
	savedMsg     struct{ err error }
	weekMsg      struct{ week models.WeekSummary }
	templatesMsg struct {
		list []models.Template
		err  error
	}
	// actionMsg reports a controller call. reload asks for the day to be
	// refetched; edited marks the day as changed since the last save.
	actionMsg struct {
		err    error
		reload bool
		edited bool
	}
	quitMsg    struct{}
	refreshMsg time.Time
)

// Options tunes a Model.
type Options struct {
	ExportDir string
}

type Model struct {
	app     *app.Controller
	ctx     context.Context
	opts    Options
	state   SessionState
	prev    SessionState
	keys    KeyMap
	help    help.Model
	grid    grid.Model
	tmpl    templatelist.Model
	input   textinput.Model
	area    textarea.Model
	week    *models.WeekSummary
	loading bool
	dirty   bool
	// status is a TUI-only hint, shown in place of the last notice.
	status string

	editing       editTarget
	editField     day.Field
	editSlot      string
	pendingDelete string

	quitting bool
	width    int
	height   int
}

func NewModel(ctx context.Context, controller *app.Controller, opts Options) Model {
	if opts.ExportDir == "" {
		opts.ExportDir = "."
	}

	ti := textinput.New()
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "How did today go?"
	ta.ShowLineNumbers = false

	m := Model{
		app:   controller,
		ctx:   ctx,
		opts:  opts,
		state: StateDay,
		keys:  DefaultKeyMap(),
		help:  help.New(),
		grid:  grid.New(0, 0),
		tmpl:  templatelist.New(nil, 0, 0),
		input: ti,
		area:  ta,
	}
	m.syncDay()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.templatesCmd(), refreshTick())
}

func refreshTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return refreshMsg(t) })
}

// syncDay copies the controller's day into the grid.
func (m *Model) syncDay() {
	m.grid.SetDay(m.app.Snapshot(), m.app.ProjectIndex)
}

func (m Model) loadCmd() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: m.app.Load(m.ctx)}
	}
}

func (m Model) saveCmd() tea.Cmd {
	return func() tea.Msg {
		return savedMsg{err: m.app.Save(m.ctx)}
	}
}

func (m Model) weekCmd() tea.Cmd {
	return func() tea.Msg {
		return weekMsg{week: m.app.Week(m.ctx)}
	}
}

func (m Model) templatesCmd() tea.Cmd {
	return func() tea.Msg {
		list, err := m.app.Templates(m.ctx)
		return templatesMsg{list: list, err: err}
	}
}

func (m Model) copyYesterdayCmd() tea.Cmd {
	return func() tea.Msg {
		err := m.app.CopyYesterday(m.ctx)
		return actionMsg{err: err, edited: err == nil}
	}
}

func (m Model) saveTemplateCmd(name string) tea.Cmd {
	return func() tea.Msg {
		return actionMsg{err: m.app.SaveTemplate(m.ctx, name)}
	}
}

func (m Model) deleteTemplateCmd(name string) tea.Cmd {
	return func() tea.Msg {
		// The y/n prompt has already been answered.
		confirmed := func(string) (bool, error) { return true, nil }
		return actionMsg{err: m.app.DeleteTemplate(m.ctx, name, confirmed)}
	}
}

func (m Model) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.app.Import(m.ctx, path)
		return actionMsg{err: err, reload: err == nil}
	}
}

func (m Model) exportCmd(f transfer.Format) tea.Cmd {
	return func() tea.Msg {
		path := filepath.Join(m.opts.ExportDir, m.app.ExportFileName(f))
		file, err := os.Create(path)
		if err != nil {
			return actionMsg{err: fmt.Errorf("failed to create export file: %w", err)}
		}
		err = m.app.Export(m.ctx, file, f)
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to write export file: %w", cerr)
		}
		return actionMsg{err: err}
	}
}

// quitCmd saves once more before the program exits.
func (m Model) quitCmd() tea.Cmd {
	return func() tea.Msg {
		_ = m.app.Save(m.ctx)
		return quitMsg{}
	}
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Save, m.keys.Quit, m.keys.Help}
	if m.state == StateDay {
		keys = append(keys, m.keys.PrevDay, m.keys.NextDay, m.keys.EditPlan, m.keys.EditActual)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	return m.keys.FullHelp()
}

// errIgnorable reports errors the user was already told about or caused.
func errIgnorable(err error) bool {
	return err == nil || errors.Is(err, app.ErrStaleLoad)
}
