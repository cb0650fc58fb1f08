// Package calorie estimates energy expenditure from MET values.
package calorie

import (
	"math"

	"github.com/claude/fitplay/internal/models"
)

// Estimate returns the calories burned for the given exercises using
//
//	MET * 3.5 * weightKg * minutes / 200
//
// where minutes is each exercise's own allotted duration. The second
// argument, the session's elapsed seconds, is not used. Exercises without a duration (reps only) contribute nothing.
//
// Invalid inputs (NaN, negative MET or weight) count as zero. The result is
// not rounded.
func Estimate(exercises []models.SessionExercise, _ int, weightKg float64) float64 {
	if !positive(weightKg) {
		return 0
	}

	var total float64
	for _, ex := range exercises {
		met := ex.Exercise.MET
		dur := ex.EffectiveDuration()
		if !positive(met) || dur <= 0 {
			continue
		}
		minutes := float64(dur) / 60
		total += met * 3.5 * weightKg * minutes / 200
	}
	return total
}

// Round rounds an estimate to the nearest whole calorie.
func Round(kcal float64) int {
	if !positive(kcal) {
		return 0
	}
	return int(math.Round(kcal))
}

func positive(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
