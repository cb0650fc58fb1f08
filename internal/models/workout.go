package models

import (
	"time"

	"github.com/google/uuid"
)

// WorkoutKind identifies which aggregate owns an exercise list.
type WorkoutKind string

const (
	KindChallengeDay  WorkoutKind = "challenge_day"
	KindCustomWorkout WorkoutKind = "custom_workout"
)

// Valid reports whether k is a known workout kind.
func (k WorkoutKind) Valid() bool {
	return k == KindChallengeDay || k == KindCustomWorkout
}

// WorkoutRef points at the exercise list a session plays.
type WorkoutRef struct {
	Kind WorkoutKind `json:"kind"`
	ID   uuid.UUID   `json:"id"`
}

// Exercise is one movement in the catalog.
type Exercise struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	TargetMuscles []string  `json:"target_muscles"`
	MET           float64   `json:"met"`
	Reps          *int      `json:"reps,omitempty"`
	DurationSec   *int      `json:"duration_sec,omitempty"`
	AnimationURL  string    `json:"animation_url,omitempty"`
	Description   string    `json:"description,omitempty"`
}

// SessionExercise binds an Exercise to a position inside a challenge day or
// custom workout. Reps and DurationSec override the exercise defaults.
type SessionExercise struct {
	ID          uuid.UUID `json:"id"`
	Position    int       `json:"position"`
	Exercise    Exercise  `json:"exercise"`
	Reps        *int      `json:"reps,omitempty"`
	DurationSec *int      `json:"duration_sec,omitempty"`
}

// EffectiveReps returns the override if set, else the exercise default, else 0.
func (se SessionExercise) EffectiveReps() int {
	if se.Reps != nil {
		return max(*se.Reps, 0)
	}
	if se.Exercise.Reps != nil {
		return max(*se.Exercise.Reps, 0)
	}
	return 0
}

// EffectiveDuration returns the duration in seconds, override first.
func (se SessionExercise) EffectiveDuration() int {
	if se.DurationSec != nil {
		return max(*se.DurationSec, 0)
	}
	if se.Exercise.DurationSec != nil {
		return max(*se.Exercise.DurationSec, 0)
	}
	return 0
}

// Playable reports whether the exercise has reps or a duration to perform.
func (se SessionExercise) Playable() bool {
	return se.EffectiveReps() > 0 || se.EffectiveDuration() > 0
}

// Challenge is a multi-day program of seeded content.
type Challenge struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Days        []ChallengeDay `json:"days,omitempty"`
}

// ChallengeDay is one day of a challenge with its ordered exercise list.
type ChallengeDay struct {
	ID        uuid.UUID         `json:"id"`
	Day       int               `json:"day"`
	Exercises []SessionExercise `json:"exercises,omitempty"`
}

// CustomWorkout is a user-authored exercise list.
type CustomWorkout struct {
	ID        uuid.UUID `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Exercises int       `json:"exercise_count"`
}

// Profile holds the user attributes the player needs.
type Profile struct {
	UserID      int      `json:"user_id"`
	Login       string   `json:"login"`
	DisplayName string   `json:"display_name"`
	WeightKg    *float64 `json:"weight_kg"`

	// DefaultWeightKg is the server's fallback for calorie estimates while
	// WeightKg is unset.
	DefaultWeightKg float64 `json:"default_weight_kg,omitempty"`
}

// DefaultWeightKg is the body weight assumed when none is recorded or configured.
const DefaultWeightKg = 70.0

// EffectiveWeightKg returns the recorded weight, else fallback.
func (p *Profile) EffectiveWeightKg(fallback float64) float64 {
	if p != nil && p.WeightKg != nil && *p.WeightKg > 0 {
		return *p.WeightKg
	}
	return fallback
}
