package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Tab           key.Binding
	ShiftTab      key.Binding
	Quit          key.Binding
	Help          key.Binding
	Up            key.Binding
	Down          key.Binding
	PrevDay       key.Binding
	NextDay       key.Binding
	Today         key.Binding
	EditPlan      key.Binding
	EditActual    key.Binding
	EditProject   key.Binding
	EditWhy       key.Binding
	Energy        key.Binding
	Select        key.Binding
	BulkProject   key.Binding
	Reflection    key.Binding
	CopyYesterday key.Binding
	Save          key.Binding
	ExportJSON    key.Binding
	ExportCSV     key.Binding
	Import        key.Binding
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Save, k.Quit, k.Help}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Save, k.Quit, k.Help},
		{k.Up, k.Down, k.PrevDay, k.NextDay, k.Today},
		{k.EditPlan, k.EditActual, k.EditProject, k.EditWhy, k.Energy},
		{k.Select, k.BulkProject, k.Reflection, k.CopyYesterday},
		{k.ExportJSON, k.ExportCSV, k.Import},
	}
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next tab"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev tab"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "save & quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next day"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		EditPlan: key.NewBinding(
			key.WithKeys("enter", "p"),
			key.WithHelp("p", "edit plan"),
		),
		EditActual: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "edit actual"),
		),
		EditProject: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "tag project"),
		),
		EditWhy: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "why deviated"),
		),
		Energy: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "energy"),
		),
		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select slot"),
		),
		BulkProject: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "tag selection"),
		),
		Reflection: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reflection"),
		),
		CopyYesterday: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy yesterday"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
		ExportJSON: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "export json"),
		),
		ExportCSV: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "export csv"),
		),
		Import: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "import file"),
		),
	}
}
