package mcp

import (
	"context"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/storage"
	"github.com/google/uuid"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QuerySessionLogs(ctx context.Context, userID int, start, end time.Time, kind models.WorkoutKind) ([]models.SessionLogRow, error)
	GetActivityStats(ctx context.Context, userID int, now time.Time) (*storage.ActivityStats, error)
	ListExercises(ctx context.Context, muscle string) ([]models.Exercise, error)
	ListChallenges(ctx context.Context) ([]models.Challenge, error)
	ChallengeDayExercises(ctx context.Context, dayID uuid.UUID) ([]models.SessionExercise, error)
	CustomWorkoutExercises(ctx context.Context, userID int, id uuid.UUID) ([]models.SessionExercise, error)
	GetProfile(ctx context.Context, userID int) (*models.Profile, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
