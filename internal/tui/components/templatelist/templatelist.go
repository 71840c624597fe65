package templatelist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/summary"
)

type SaveTemplateMsg struct{}

type LoadTemplateMsg struct {
	Name string
}

type DeleteTemplateMsg struct {
	Name string
}

type Item struct {
	Template models.Template
}

func (i Item) Title() string { return i.Template.Name }
func (i Item) Description() string {
	s := summary.Compute(i.Template.Data)
	return fmt.Sprintf("%.1fh planned | %d project(s) | %s",
		s.PlannedHours, len(s.Projects), i.Template.CreatedAt.Local().Format("2006-01-02"))
}
func (i Item) FilterValue() string { return i.Template.Name }

type KeyMap struct {
	Save   key.Binding
	Load   key.Binding
	Delete key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Save: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "save day as template"),
		),
		Load: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "load"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(templates []models.Template, width, height int) Model {
	l := list.New(toItems(templates), list.NewDefaultDelegate(), width, height)
	l.Title = "Templates"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Save, keys.Load, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Save, keys.Load, keys.Delete}
	}

	return Model{list: l, keys: keys}
}

func toItems(templates []models.Template) []list.Item {
	items := make([]list.Item, len(templates))
	for i, t := range templates {
		items[i] = Item{Template: t}
	}
	return items
}

func (m *Model) SetTemplates(templates []models.Template) {
	m.list.SetItems(toItems(templates))
}

// Filtering reports whether the list is capturing keys for its filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Filtering() {
			break
		}
		switch {
		case key.Matches(msg, m.keys.Save):
			return m, func() tea.Msg { return SaveTemplateMsg{} }
		case key.Matches(msg, m.keys.Load):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return LoadTemplateMsg{Name: i.Template.Name} }
			}
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteTemplateMsg{Name: i.Template.Name} }
			}
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && !m.Filtering() {
		return "\n  No templates yet.\n  Press 'n' to save the current day as one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}
