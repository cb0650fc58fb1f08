package server

import (
	"context"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/storage"
	"github.com/google/uuid"
)

// Store is the persistence surface the HTTP handlers use. *storage.DB
// satisfies it; tests substitute an in-memory fake.
type Store interface {
	GetOrCreateUser(ctx context.Context, login, displayName string) (int, error)
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
	SetWeight(ctx context.Context, userID int, kg float64) error

	ListExercises(ctx context.Context, muscle string) ([]models.Exercise, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	ChallengeDayExercises(ctx context.Context, dayID uuid.UUID) ([]models.SessionExercise, error)

	CreateCustomWorkout(ctx context.Context, userID int, name string, list []models.SessionExercise) (*models.CustomWorkout, error)
	ListCustomWorkouts(ctx context.Context, userID int) ([]models.CustomWorkout, error)
	CustomWorkoutExercises(ctx context.Context, userID int, id uuid.UUID) ([]models.SessionExercise, error)
	ReplaceCustomWorkoutExercises(ctx context.Context, userID int, id uuid.UUID, list []models.SessionExercise) error

	InsertSessionLog(ctx context.Context, row models.SessionLogRow) (bool, error)
	QuerySessionLogs(ctx context.Context, userID int, start, end time.Time, kind models.WorkoutKind) ([]models.SessionLogRow, error)
	GetSessionLog(ctx context.Context, userID int, id uuid.UUID) (*models.SessionLogRow, error)
	GetActivityStats(ctx context.Context, userID int, now time.Time) (*storage.ActivityStats, error)

	InsertImportLog(ctx context.Context, log storage.ImportLog) (int64, error)
	QueryImportLogs(ctx context.Context, userID, limit int) ([]storage.ImportLog, error)
}

var _ Store = (*storage.DB)(nil)
