// Package summary derives daily and weekly statistics from recorded blocks.
package summary

import (
	"math"

	"github.com/julianstephens/timediary/internal/constants"
	"github.com/julianstephens/timediary/internal/models"
)

// Compute summarises one day's blocks. Every non-empty plan or actual adds
// half an hour to the day's totals; project totals only count tagged blocks.
func Compute(snap models.Snapshot) models.DaySummary {
	sum := models.DaySummary{Projects: make(map[string]models.ProjectTotals)}

	energySum, energyCount := 0, 0
	for _, b := range snap {
		if b.HasPlan() {
			sum.PlannedBlocks++
			sum.PlannedHours += constants.SlotHours
			if b.HasActual() {
				sum.CompletedBlocks++
			}
		}
		if b.HasActual() {
			sum.ActualHours += constants.SlotHours
		}
		if b.Energy != 0 {
			energySum += b.Energy
			energyCount++
		}
		if b.Project != "" {
			addProject(sum.Projects, b)
		}
	}

	sum.Drift = sum.ActualHours - sum.PlannedHours
	sum.Efficiency = efficiency(sum.CompletedBlocks, sum.PlannedBlocks)
	if energyCount > 0 {
		sum.AverageEnergy = roundTenth(float64(energySum) / float64(energyCount))
	}
	return sum
}

func addProject(totals map[string]models.ProjectTotals, b models.Block) {
	t := totals[b.Project]
	if b.HasPlan() {
		t.Planned += constants.SlotHours
	}
	if b.HasActual() {
		t.Actual += constants.SlotHours
	}
	totals[b.Project] = t
}

func efficiency(completed, planned int) int {
	if planned == 0 {
		return 0
	}
	pct := int(math.Round(float64(completed) / float64(planned) * 100))
	return min(max(pct, 0), 100)
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}
