// Package grid renders the day's half-hour slots with a cursor and a
// multi-slot selection.
package grid

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/slots"
)

// palette is indexed by a project's position in the project list.
var palette = []lipgloss.Color{
	lipgloss.Color("33"),  // blue
	lipgloss.Color("34"),  // green
	lipgloss.Color("135"), // purple
	lipgloss.Color("208"), // orange
	lipgloss.Color("205"), // pink
	lipgloss.Color("62"),  // indigo
	lipgloss.Color("37"),  // teal
	lipgloss.Color("214"), // amber
	lipgloss.Color("196"), // red
	lipgloss.Color("51"),  // cyan
}

var (
	timeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Width(6)

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	cursorStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236"))

	markStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	whyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Italic(true)

	headStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Bold(true)
)

const (
	planWidth    = 24
	actualWidth  = 24
	projectWidth = 14
)

// ProjectColor returns the color of the project at index, or no color for
// projects that are not registered.
func ProjectColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return palette[index%len(palette)]
}

// ProjectDot renders a colored marker for the project at index.
func ProjectDot(index int) string {
	if index < 0 {
		return " "
	}
	return lipgloss.NewStyle().Foreground(ProjectColor(index)).Render("●")
}

// Header labels the columns Line renders.
func Header() string {
	return headStyle.Render(fmt.Sprintf("  %-6s%s%s%s%s",
		"Time", pad("Plan", planWidth), pad("Actual", actualWidth), pad("Project", projectWidth), "Energy"))
}

// Line renders one slot. marked is the bulk-selection marker.
func Line(label string, b models.Block, colorIdx int, marked bool) string {
	mark := " "
	if marked {
		mark = markStyle.Render("✓")
	}

	project := emptyStyle.Render("-")
	if b.Project != "" {
		project = ProjectDot(colorIdx) + " " + lipgloss.NewStyle().Foreground(ProjectColor(colorIdx)).Render(b.Project)
	}

	line := fmt.Sprintf("%s %s%s%s%s⚡%d",
		mark,
		timeStyle.Render(label),
		cell(b.Plan, planWidth),
		cell(b.Actual, actualWidth),
		lipgloss.NewStyle().Width(projectWidth).MaxWidth(projectWidth).Render(project),
		b.Energy,
	)
	if b.Unplanned() && b.Distraction != "" {
		line += " " + whyStyle.Render("why: "+b.Distraction)
	}
	return line
}

func cell(s string, width int) string {
	if s == "" {
		return lipgloss.NewStyle().Width(width).Render(emptyStyle.Render("-"))
	}
	return pad(s, width)
}

// pad truncates or pads s to width cells, leaving one cell of gap.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) > width-1 {
		s = string(runes[:width-2]) + "…"
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

type Model struct {
	viewport viewport.Model
	labels   []string
	blocks   models.Snapshot
	colorOf  func(string) int
	cursor   int
	selected map[string]bool
	width    int
	height   int
}

func New(width, height int) Model {
	return Model{
		viewport: viewport.New(width, height),
		labels:   slots.All(),
		blocks:   make(models.Snapshot),
		colorOf:  func(string) int { return -1 },
		selected: make(map[string]bool),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, Header(), m.viewport.View())
}

// SetSize sizes the grid; one row goes to the header.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-1, 1)
	m.Render()
}

// SetDay replaces the blocks shown. The cursor and the selection are kept.
func (m *Model) SetDay(snap models.Snapshot, colorOf func(string) int) {
	m.blocks = snap
	if colorOf != nil {
		m.colorOf = colorOf
	}
	m.Render()
}

// Cursor returns the slot under the cursor.
func (m Model) Cursor() string {
	return m.labels[m.cursor]
}

func (m *Model) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
	}
	m.Render()
}

func (m *Model) MoveDown() {
	if m.cursor < len(m.labels)-1 {
		m.cursor++
	}
	m.Render()
}

// ToggleSelected adds or removes the cursor's slot from the selection.
func (m *Model) ToggleSelected() {
	label := m.Cursor()
	if m.selected[label] {
		delete(m.selected, label)
	} else {
		m.selected[label] = true
	}
	m.Render()
}

// Selected returns the selected slots in chronological order.
func (m Model) Selected() []string {
	out := make([]string, 0, len(m.selected))
	for _, l := range m.labels {
		if m.selected[l] {
			out = append(out, l)
		}
	}
	return out
}

func (m *Model) ClearSelection() {
	m.selected = make(map[string]bool)
	m.Render()
}

// Render rebuilds the content and scrolls the cursor into view.
func (m *Model) Render() {
	var b strings.Builder
	for i, label := range m.labels {
		blk, ok := m.blocks[label]
		if !ok {
			blk = models.NewBlock()
		}
		line := Line(label, blk, m.colorOf(blk.Project), m.selected[label])
		if i == m.cursor {
			line = cursorStyle.Width(m.width).Render(line)
		}
		b.WriteString(line)
		if i < len(m.labels)-1 {
			b.WriteString("\n")
		}
	}
	m.viewport.SetContent(b.String())

	switch {
	case m.cursor < m.viewport.YOffset:
		m.viewport.SetYOffset(m.cursor)
	case m.cursor >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(m.cursor - m.viewport.Height + 1)
	}
}
