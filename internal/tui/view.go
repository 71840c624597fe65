package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timediary/internal/app"
	"github.com/julianstephens/timediary/internal/constants"
)

// summaryWidth is the room kept for the summary panel beside the grid.
const summaryWidth = 46

// noticeTTL is how long a notice stays in the status line.
const noticeTTL = 5 * time.Second

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case StateDay:
		content = m.viewDay()
	case StateWeek:
		content = m.viewWeek()
	case StateTemplates:
		content = docStyle.Render(m.tmpl.View())
	case StateEditing:
		content = lipgloss.JoinVertical(lipgloss.Left, m.grid.View(), "", m.input.View())
	case StateReflection:
		content = lipgloss.JoinVertical(lipgloss.Left,
			headerStyle.Render("Reflection for "+m.app.Date()),
			m.area.View(),
			mutedStyle.Render("esc to keep"),
		)
	case StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewHeader(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewHeader() string {
	var tabs []string
	for i, title := range []string{"Day", "Week", "Templates"} {
		if m.state == SessionState(i) || (m.state >= tabCount && m.prev == SessionState(i)) {
			tabs = append(tabs, activeTabStyle.Render(title))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(title))
		}
	}

	date := m.app.Date()
	if t, err := time.Parse(constants.DateFormat, date); err == nil {
		date = t.Format("Mon 2006-01-02")
	}
	if m.app.IsToday() {
		date += " (today)"
	}
	nav := headerStyle.Render("◀ " + date + " ▶")

	return lipgloss.JoinHorizontal(lipgloss.Top, append(tabs, "  ", nav)...)
}

func (m Model) viewDay() string {
	panel := RenderSummary(m.app.Summary(), m.app.ProjectIndex)
	if m.width >= 120 {
		return lipgloss.JoinHorizontal(lipgloss.Top, m.grid.View(), " ", panel)
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.grid.View(), panel)
}

func (m Model) viewWeek() string {
	if m.week == nil {
		return docStyle.Render(mutedStyle.Render("Loading…"))
	}
	return docStyle.Render(RenderWeek(*m.week, m.app.ProjectIndex))
}

func (m Model) viewConfirmDelete() string {
	return lipgloss.Place(m.width, max(m.height-4, 5),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render(fmt.Sprintf("Delete template %q?", m.pendingDelete)),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}

// viewStatus shows the TUI hint if any, else the latest recent notice.
func (m Model) viewStatus() string {
	var parts []string
	if m.dirty {
		parts = append(parts, warningStyle.Render("● unsaved"))
	}
	if n := len(m.grid.Selected()); n > 0 {
		parts = append(parts, successStyle.Render(fmt.Sprintf("%d selected", n)))
	}

	switch {
	case m.status != "":
		parts = append(parts, warningStyle.Render(m.status))
	default:
		if n, ok := m.app.LastNotice(); ok && time.Since(n.At) < noticeTTL {
			parts = append(parts, noticeStyle(n.Level).Render(n.Message))
		}
	}

	if len(parts) == 0 {
		return ""
	}
	line := parts[0]
	for _, p := range parts[1:] {
		line += mutedStyle.Render(" · ") + p
	}
	return line
}

func noticeStyle(level app.NoticeLevel) lipgloss.Style {
	switch level {
	case app.NoticeSuccess:
		return successStyle
	case app.NoticeWarning:
		return warningStyle
	case app.NoticeError:
		return dangerStyle
	default:
		return mutedStyle
	}
}
