package models

// ProjectTotals holds planned and actual hours for one project.
type ProjectTotals struct {
	Planned float64 `json:"planned"`
	Actual  float64 `json:"actual"`
}

// Drift is actual minus planned hours.
func (p ProjectTotals) Drift() float64 {
	return p.Actual - p.Planned
}

// DaySummary is derived from a day's blocks and never stored.
type DaySummary struct {
	PlannedHours    float64
	ActualHours     float64
	Drift           float64
	PlannedBlocks   int
	CompletedBlocks int
	Efficiency      int     // whole percent, 0-100
	AverageEnergy   float64 // one decimal
	Projects        map[string]ProjectTotals
}

// DayTotals is one day's row in a weekly summary.
type DayTotals struct {
	Date    string
	Planned float64
	Actual  float64
}

// WeekSummary folds a window of days. Days are in ascending date order.
type WeekSummary struct {
	Days       []DayTotals
	Projects   map[string]ProjectTotals
	FailedDays []string
}
