package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/timediary/internal/models"
	"github.com/julianstephens/timediary/internal/slots"
	"github.com/julianstephens/timediary/internal/tui/components/grid"
)

// ColorIndex maps a project name to its palette index, -1 for none.
type ColorIndex func(project string) int

func noColors(string) int { return -1 }

// ProgressBar renders percentage (clamped to 0-100) as a bar of width cells.
func ProgressBar(percentage, width int) string {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}
	filled := (percentage * width) / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return successStyle.Render(bar)
}

// FormatHours prints hours with one decimal and a leading sign for drift.
func FormatHours(h float64, signed bool) string {
	if signed && h > 0 {
		return fmt.Sprintf("+%.1fh", h)
	}
	return fmt.Sprintf("%.1fh", h)
}

// RenderSummary draws the daily statistics panel.
func RenderSummary(s models.DaySummary, colorOf ColorIndex) string {
	if colorOf == nil {
		colorOf = noColors
	}

	driftStyle := successStyle
	if s.Drift < 0 {
		driftStyle = warningStyle
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Daily summary") + "\n")
	fmt.Fprintf(&b, "Planned     %s\n", FormatHours(s.PlannedHours, false))
	fmt.Fprintf(&b, "Actual      %s\n", FormatHours(s.ActualHours, false))
	fmt.Fprintf(&b, "Drift       %s\n", driftStyle.Render(FormatHours(s.Drift, true)))
	fmt.Fprintf(&b, "Efficiency  %s %d%%\n", ProgressBar(s.Efficiency, 20), s.Efficiency)
	fmt.Fprintf(&b, "Avg energy  %.1f\n", s.AverageEnergy)

	if len(s.Projects) > 0 {
		b.WriteString("\n" + headerStyle.Render("Projects") + "\n")
		b.WriteString(renderProjectRows(s.Projects, colorOf))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

// RenderWeek draws the weekly panel: one row per day then project totals.
func RenderWeek(w models.WeekSummary, colorOf ColorIndex) string {
	if colorOf == nil {
		colorOf = noColors
	}

	failed := make(map[string]bool, len(w.FailedDays))
	for _, d := range w.FailedDays {
		failed[d] = true
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render("Weekly summary") + "\n")
	fmt.Fprintf(&b, "%-12s %8s %8s %8s\n", "Date", "Planned", "Actual", "Drift")
	var planned, actual float64
	for _, d := range w.Days {
		line := fmt.Sprintf("%-12s %8s %8s %8s", d.Date,
			FormatHours(d.Planned, false), FormatHours(d.Actual, false), FormatHours(d.Actual-d.Planned, true))
		if failed[d.Date] {
			line += " " + warningStyle.Render("(unavailable)")
		}
		b.WriteString(line + "\n")
		planned += d.Planned
		actual += d.Actual
	}
	fmt.Fprintf(&b, "%-12s %8s %8s %8s\n", "Total",
		FormatHours(planned, false), FormatHours(actual, false), FormatHours(actual-planned, true))

	if len(w.Projects) > 0 {
		b.WriteString("\n" + headerStyle.Render("Projects") + "\n")
		b.WriteString(renderProjectRows(w.Projects, colorOf))
	}
	return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
}

func renderProjectRows(totals map[string]models.ProjectTotals, colorOf ColorIndex) string {
	names := make([]string, 0, len(totals))
	for n := range totals {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, n := range names {
		t := totals[n]
		fmt.Fprintf(&b, "%s %-18s %s / %s (%s)\n", grid.ProjectDot(colorOf(n)), n,
			FormatHours(t.Planned, false), FormatHours(t.Actual, false), FormatHours(t.Drift(), true))
	}
	return b.String()
}

// RenderGrid draws the day's blocks, one line per slot. With all unset only
// slots holding a plan or an actual are shown.
func RenderGrid(snap models.Snapshot, all bool, colorOf ColorIndex) string {
	if colorOf == nil {
		colorOf = noColors
	}

	rows := []string{grid.Header()}
	for _, label := range slots.All() {
		blk, ok := snap[label]
		if !ok {
			blk = models.NewBlock()
		}
		if !all && blk.IsEmpty() {
			continue
		}
		rows = append(rows, grid.Line(label, blk, colorOf(blk.Project), false))
	}
	if len(rows) == 1 {
		return mutedStyle.Render("Nothing recorded for this day.")
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
