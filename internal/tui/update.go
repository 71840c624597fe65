package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timediary/internal/day"
	"github.com/julianstephens/timediary/internal/transfer"
	"github.com/julianstephens/timediary/internal/tui/components/templatelist"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case refreshMsg:
		// Picks up notices and saves from the auto-save goroutine.
		if m.state != StateEditing && m.state != StateReflection {
			m.syncDay()
		}
		return m, refreshTick()

	case loadedMsg:
		m.loading = false
		if errIgnorable(msg.err) {
			m.dirty = false
		}
		m.syncDay()
		m.area.SetValue(m.app.Reflection())
		if m.state == StateWeek {
			return m, m.weekCmd()
		}
		return m, nil

	case savedMsg:
		if msg.err == nil {
			m.dirty = false
		}
		return m, nil

	case weekMsg:
		w := msg.week
		m.week = &w
		return m, nil

	case templatesMsg:
		m.tmpl.SetTemplates(msg.list)
		return m, nil

	case actionMsg:
		m.syncDay()
		if msg.edited {
			m.dirty = true
		}
		if msg.reload {
			m.loading = true
			return m, tea.Batch(m.loadCmd(), m.templatesCmd())
		}
		return m, m.templatesCmd()

	case quitMsg:
		return m, tea.Quit

	case templatelist.SaveTemplateMsg:
		cmd := m.startInput(editTemplateName, "Template name", "")
		return m, cmd

	case templatelist.LoadTemplateMsg:
		if err := m.app.ApplyTemplate(msg.Name); err != nil {
			m.status = "Template not found: " + msg.Name
			return m, nil
		}
		m.dirty = true
		m.syncDay()
		m.state = StateDay
		return m, nil

	case templatelist.DeleteTemplateMsg:
		m.pendingDelete = msg.Name
		m.prev = m.state
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateEditing:
		return m.updateEditing(msg)
	case StateReflection:
		return m.updateReflection(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		if m.state == StateTemplates {
			var cmd tea.Cmd
			m.tmpl, cmd = m.tmpl.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.state == StateTemplates && m.tmpl.Filtering() {
		var cmd tea.Cmd
		m.tmpl, cmd = m.tmpl.Update(msg)
		return m, cmd
	}

	m.status = ""
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.quitting = true
		return m, m.quitCmd()
	case key.Matches(keyMsg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()
		return m, nil
	case key.Matches(keyMsg, m.keys.Tab):
		return m.switchTab((m.state + 1) % tabCount)
	case key.Matches(keyMsg, m.keys.ShiftTab):
		return m.switchTab((m.state - 1 + tabCount) % tabCount)
	case key.Matches(keyMsg, m.keys.Save):
		return m, m.saveCmd()
	case key.Matches(keyMsg, m.keys.PrevDay):
		return m.navigate(-1)
	case key.Matches(keyMsg, m.keys.NextDay):
		return m.navigate(1)
	case key.Matches(keyMsg, m.keys.Today):
		return m.navigate(0)
	}

	switch m.state {
	case StateDay:
		return m.updateDay(keyMsg)
	case StateTemplates:
		var cmd tea.Cmd
		m.tmpl, cmd = m.tmpl.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) switchTab(next SessionState) (tea.Model, tea.Cmd) {
	m.state = next
	switch next {
	case StateWeek:
		return m, m.weekCmd()
	case StateTemplates:
		return m, m.templatesCmd()
	}
	return m, nil
}

// navigate moves the selected day; zero jumps to today. Unsaved edits are
// saved first so they are not lost with the old day.
func (m Model) navigate(days int) (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	m.loading = true
	dirty := m.dirty
	m.grid.ClearSelection()

	ctx, controller := m.ctx, m.app
	return m, func() tea.Msg {
		if dirty {
			if err := controller.Save(ctx); err != nil {
				return loadedMsg{err: err}
			}
		}
		if days == 0 {
			controller.Today()
		} else {
			controller.ChangeDate(days)
		}
		return loadedMsg{err: controller.Load(ctx)}
	}
}

func (m Model) updateDay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	slot := m.grid.Cursor()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.grid.MoveUp()
	case key.Matches(msg, m.keys.Down):
		m.grid.MoveDown()
	case key.Matches(msg, m.keys.EditPlan):
		cmd := m.startField(day.FieldPlan, "Plan")
		return m, cmd
	case key.Matches(msg, m.keys.EditActual):
		cmd := m.startField(day.FieldActual, "Actual")
		return m, cmd
	case key.Matches(msg, m.keys.EditProject):
		cmd := m.startField(day.FieldProject, "Project")
		return m, cmd
	case key.Matches(msg, m.keys.EditWhy):
		if !m.app.Block(slot).Unplanned() {
			m.status = "A deviation reason applies to slots with an actual and no plan"
			return m, nil
		}
		cmd := m.startField(day.FieldDistraction, "Why deviated?")
		return m, cmd
	case key.Matches(msg, m.keys.Energy):
		if err := m.app.UpdateBlock(slot, day.FieldEnergy, msg.String()); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dirty = true
		m.syncDay()
	case key.Matches(msg, m.keys.Select):
		m.grid.ToggleSelected()
	case key.Matches(msg, m.keys.BulkProject):
		if len(m.grid.Selected()) == 0 {
			m.status = "Select slots with space first"
			return m, nil
		}
		cmd := m.startInput(editBulkProject, "Project for "+strconv.Itoa(len(m.grid.Selected()))+" slot(s)", "")
		return m, cmd
	case key.Matches(msg, m.keys.Reflection):
		m.prev = m.state
		m.state = StateReflection
		m.area.SetValue(m.app.Reflection())
		cmd := m.area.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.CopyYesterday):
		return m, m.copyYesterdayCmd()
	case key.Matches(msg, m.keys.ExportJSON):
		return m, m.exportCmd(transfer.FormatJSON)
	case key.Matches(msg, m.keys.ExportCSV):
		return m, m.exportCmd(transfer.FormatCSV)
	case key.Matches(msg, m.keys.Import):
		cmd := m.startInput(editImportPath, "File to import (.json or .csv)", "")
		return m, cmd
	}
	return m, nil
}

func (m *Model) startField(field day.Field, prompt string) tea.Cmd {
	m.editField = field
	m.editSlot = m.grid.Cursor()
	b := m.app.Block(m.editSlot)

	var value string
	switch field {
	case day.FieldPlan:
		value = b.Plan
	case day.FieldActual:
		value = b.Actual
	case day.FieldProject:
		value = b.Project
	case day.FieldDistraction:
		value = b.Distraction
	}
	return m.startInput(editField, m.editSlot+" "+prompt, value)
}

func (m *Model) startInput(target editTarget, prompt, value string) tea.Cmd {
	m.editing = target
	m.prev = m.state
	m.state = StateEditing
	m.input.Prompt = prompt + ": "
	m.input.SetValue(value)
	m.input.CursorEnd()
	if target == editField && m.editField == day.FieldProject {
		m.input.ShowSuggestions = true
		m.input.SetSuggestions(m.app.Projects())
	} else {
		m.input.ShowSuggestions = false
		m.input.SetSuggestions(nil)
	}
	return m.input.Focus()
}

func (m Model) updateEditing(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyEsc:
			m.input.Blur()
			m.state = m.prev
			return m, nil
		case tea.KeyEnter:
			value := m.input.Value()
			m.input.Blur()
			m.state = m.prev
			return m.commitInput(value)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) commitInput(value string) (tea.Model, tea.Cmd) {
	switch m.editing {
	case editField:
		if err := m.app.UpdateBlock(m.editSlot, m.editField, value); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dirty = true
		m.syncDay()
	case editBulkProject:
		if err := m.app.ApplyBulkProject(m.grid.Selected(), value); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.dirty = true
		m.grid.ClearSelection()
		m.syncDay()
	case editTemplateName:
		name := strings.TrimSpace(value)
		if name == "" {
			return m, nil
		}
		return m, m.saveTemplateCmd(name)
	case editImportPath:
		path := strings.TrimSpace(value)
		if path == "" {
			return m, nil
		}
		return m, m.importCmd(path)
	}
	return m, nil
}

func (m Model) updateReflection(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.Type == tea.KeyEsc {
		m.app.SetReflection(m.area.Value())
		m.dirty = true
		m.area.Blur()
		m.state = m.prev
		return m, nil
	}

	var cmd tea.Cmd
	m.area, cmd = m.area.Update(msg)
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		name := m.pendingDelete
		m.pendingDelete = ""
		m.state = m.prev
		return m, m.deleteTemplateCmd(name)
	case "n", "N", "esc":
		m.pendingDelete = ""
		m.state = m.prev
	}
	return m, nil
}

// resize hands the space left by the header and footer to the components.
func (m *Model) resize() {
	helpHeight := 1
	if m.help.ShowAll {
		helpHeight = len(m.keys.FullHelp()[0]) + 1
	}
	bodyHeight := max(m.height-helpHeight-4, 3)

	gridWidth := m.width
	if m.width >= 120 {
		gridWidth = m.width - summaryWidth
	}
	m.grid.SetSize(gridWidth, bodyHeight)
	m.tmpl.SetSize(m.width-4, bodyHeight)
	m.input.Width = max(m.width-len(m.input.Prompt)-4, 10)
	m.area.SetWidth(max(m.width-4, 20))
	m.area.SetHeight(max(bodyHeight-2, 3))
}
