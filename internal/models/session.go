package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionSummary is the completion report for one play-through.
type SessionSummary struct {
	TotalExercises    int    `json:"total_exercises"`
	CompletedCount    int    `json:"completed_count"`
	CompletedExercise string `json:"completed_exercise"`
	TotalTime         int    `json:"total_time"`
	AvgCalorie        int    `json:"avg_calorie"`
}

// SessionRecord is what the persistence sink receives once a session completes.
type SessionRecord struct {
	ID        uuid.UUID      `json:"id"`
	Workout   WorkoutRef     `json:"workout"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
	Summary   SessionSummary `json:"summary"`
}

// SessionLogRow is a row of the workout_sessions table.
type SessionLogRow struct {
	ID             uuid.UUID   `json:"id"`
	UserID         int         `json:"user_id"`
	Kind           WorkoutKind `json:"kind"`
	WorkoutID      uuid.UUID   `json:"workout_id"`
	StartedAt      time.Time   `json:"started_at"`
	EndedAt        time.Time   `json:"ended_at"`
	TotalExercises int         `json:"total_exercises"`
	CompletedCount int         `json:"completed_count"`
	TotalTimeSec   int         `json:"total_time_sec"`
	Calories       int         `json:"calories"`
}

// SessionLogFromRecord converts a sink record into a row for the given user.
func SessionLogFromRecord(userID int, rec SessionRecord) SessionLogRow {
	return SessionLogRow{
		ID:             rec.ID,
		UserID:         userID,
		Kind:           rec.Workout.Kind,
		WorkoutID:      rec.Workout.ID,
		StartedAt:      rec.StartedAt,
		EndedAt:        rec.EndedAt,
		TotalExercises: rec.Summary.TotalExercises,
		CompletedCount: rec.Summary.CompletedCount,
		TotalTimeSec:   rec.Summary.TotalTime,
		Calories:       rec.Summary.AvgCalorie,
	}
}
