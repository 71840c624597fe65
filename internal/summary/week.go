package summary

import (
	"context"
	"time"

	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/logger"
	"github.com/julianstephens/timediary/internal/models"
)

// EntryFetcher loads the stored blocks of a single date.
type EntryFetcher interface {
	GetEntries(ctx context.Context, date string) ([]models.TimeEntry, error)
}

// WeeklyAggregator folds a window of days ending at an anchor date.
type WeeklyAggregator struct {
	fetcher EntryFetcher
	days    int
}

// NewWeeklyAggregator returns an aggregator over the standard seven-day window.
func NewWeeklyAggregator(fetcher EntryFetcher) *WeeklyAggregator {
	return &WeeklyAggregator{fetcher: fetcher, days: constants.WeekWindowDays}
}

// WindowDates lists the dates of the window ending at anchor, oldest first.
func (w *WeeklyAggregator) WindowDates(anchor time.Time) []string {
	return DateRange(anchor, w.days)
}

// Aggregate fetches each day in the window and folds its totals. A failed
// fetch is logged and counted as an empty day; it never aborts the rest.
func (w *WeeklyAggregator) Aggregate(ctx context.Context, anchor time.Time) models.WeekSummary {
	week := models.WeekSummary{Projects: make(map[string]models.ProjectTotals)}

	for _, date := range w.WindowDates(anchor) {
		totals := models.DayTotals{Date: date}

		entries, err := w.fetcher.GetEntries(ctx, date)
		if err != nil {
			logger.Warn("Failed to fetch day for weekly summary", "date", date, "error", err)
			week.FailedDays = append(week.FailedDays, date)
			week.Days = append(week.Days, totals)
			continue
		}

		for _, e := range entries {
			b := e.Block
			if b.HasPlan() {
				totals.Planned += constants.SlotHours
			}
			if b.HasActual() {
				totals.Actual += constants.SlotHours
			}
			if b.Project != "" {
				addProject(week.Projects, b)
			}
		}
		week.Days = append(week.Days, totals)
	}

	return week
}

// DateRange returns n consecutive dates ending at anchor (inclusive), oldest first.
func DateRange(anchor time.Time, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[n-1-i] = anchor.AddDate(0, 0, -i).Format(constants.DateFormat)
	}
	return out
}
