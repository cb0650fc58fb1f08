package session

import (
	"fmt"

	"github.com/claude/fitplay/internal/calorie"
	"github.com/claude/fitplay/internal/models"
)

// BuildSummary assembles the completion report. Calories are estimated over
// the full exercise list and rounded here, at the display boundary.
func BuildSummary(exercises []models.SessionExercise, st State, weightKg float64) models.SessionSummary {
	total := len(exercises)
	done := len(st.Completed)
	return models.SessionSummary{
		TotalExercises:    total,
		CompletedCount:    done,
		CompletedExercise: fmt.Sprintf("%d/%d", done, total),
		TotalTime:         st.Elapsed,
		AvgCalorie:        calorie.Round(calorie.Estimate(exercises, st.Elapsed, weightKg)),
	}
}
