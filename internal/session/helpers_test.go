package session

import (
	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

func intPtr(v int) *int { return &v }

func timed(name string, met float64, seconds int) models.SessionExercise {
	return models.SessionExercise{
		ID: uuid.New(),
		Exercise: models.Exercise{
			ID:          uuid.New(),
			Name:        name,
			MET:         met,
			DurationSec: intPtr(seconds),
		},
	}
}

func reps(name string, met float64, n int) models.SessionExercise {
	return models.SessionExercise{
		ID: uuid.New(),
		Exercise: models.Exercise{
			ID:   uuid.New(),
			Name: name,
			MET:  met,
			Reps: intPtr(n),
		},
	}
}

// scenario is the three-exercise workout: 30s timed, 10 reps, 20s timed.
func scenario() []models.SessionExercise {
	return []models.SessionExercise{
		timed("jumping jacks", 4, 30),
		reps("push ups", 0, 10),
		timed("high knees", 6, 20),
	}
}

func tickN(m *Machine, n int) {
	for range n {
		m.Tick()
	}
}
