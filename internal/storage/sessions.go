package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

// InsertSessionLog stores a completed session. Returns false if a session
// with the same id was already recorded.
func (db *DB) InsertSessionLog(ctx context.Context, row models.SessionLogRow) (bool, error) {
	tag, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_sessions (id, user_id, kind, workout_id, started_at, ended_at,
		 total_exercises, completed_count, total_time_sec, calories)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		 ON CONFLICT (id) DO NOTHING`,
		row.ID, row.UserID, row.Kind, row.WorkoutID, row.StartedAt, row.EndedAt,
		row.TotalExercises, row.CompletedCount, row.TotalTimeSec, row.Calories)
	if err != nil {
		return false, fmt.Errorf("inserting session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// RecordSession stores a sink record for the given user.
func (db *DB) RecordSession(ctx context.Context, userID int, rec models.SessionRecord) (bool, error) {
	return db.InsertSessionLog(ctx, models.SessionLogFromRecord(userID, rec))
}

// QuerySessionLogs returns sessions started in [start, end), newest first.
// An empty kind matches both workout kinds.
func (db *DB) QuerySessionLogs(ctx context.Context, userID int, start, end time.Time, kind models.WorkoutKind) ([]models.SessionLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, user_id, kind, workout_id, started_at, ended_at,
		 total_exercises, completed_count, total_time_sec, calories
		 FROM workout_sessions
		 WHERE user_id = $1 AND started_at >= $2 AND started_at < $3
		   AND ($4 = '' OR kind = $4)
		 ORDER BY started_at DESC`,
		userID, start, end, string(kind))
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var result []models.SessionLogRow
	for rows.Next() {
		var s models.SessionLogRow
		if err := rows.Scan(&s.ID, &s.UserID, &s.Kind, &s.WorkoutID, &s.StartedAt, &s.EndedAt,
			&s.TotalExercises, &s.CompletedCount, &s.TotalTimeSec, &s.Calories); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// GetSessionLog returns one of the user's sessions.
func (db *DB) GetSessionLog(ctx context.Context, userID int, id uuid.UUID) (*models.SessionLogRow, error) {
	var s models.SessionLogRow
	err := db.Pool.QueryRow(ctx,
		`SELECT id, user_id, kind, workout_id, started_at, ended_at,
		 total_exercises, completed_count, total_time_sec, calories
		 FROM workout_sessions
		 WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&s.ID, &s.UserID, &s.Kind, &s.WorkoutID, &s.StartedAt, &s.EndedAt,
		&s.TotalExercises, &s.CompletedCount, &s.TotalTimeSec, &s.Calories)
	if err != nil {
		return nil, fmt.Errorf("querying session: %w", notFound(err))
	}
	return &s, nil
}
