package storage

import (
	"context"
	"fmt"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateCustomWorkout stores a new user workout with its ordered exercises.
func (db *DB) CreateCustomWorkout(ctx context.Context, userID int, name string, list []models.SessionExercise) (*models.CustomWorkout, error) {
	w := &models.CustomWorkout{ID: uuid.New(), UserID: userID, Name: name, Exercises: len(list)}
	err := db.inTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO custom_workouts (id, user_id, name) VALUES ($1, $2, $3) RETURNING created_at`,
			w.ID, userID, name).Scan(&w.CreatedAt)
		if err != nil {
			return fmt.Errorf("inserting custom workout: %w", err)
		}
		return insertBindings(ctx, tx, "custom_workout_exercises", "custom_workout_id", w.ID, list)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListCustomWorkouts returns a user's workouts, newest first.
func (db *DB) ListCustomWorkouts(ctx context.Context, userID int) ([]models.CustomWorkout, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT w.id, w.user_id, w.name, w.created_at, COUNT(b.id)
		 FROM custom_workouts w
		 LEFT JOIN custom_workout_exercises b ON b.custom_workout_id = w.id
		 WHERE w.user_id = $1
		 GROUP BY w.id
		 ORDER BY w.created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying custom workouts: %w", err)
	}
	defer rows.Close()

	var result []models.CustomWorkout
	for rows.Next() {
		var w models.CustomWorkout
		if err := rows.Scan(&w.ID, &w.UserID, &w.Name, &w.CreatedAt, &w.Exercises); err != nil {
			return nil, fmt.Errorf("scanning custom workout: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// CustomWorkoutExercises returns the ordered exercise list of a user's
// workout. ErrNotFound if the workout does not exist or is not theirs.
func (db *DB) CustomWorkoutExercises(ctx context.Context, userID int, workoutID uuid.UUID) ([]models.SessionExercise, error) {
	var exists bool
	err := db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM custom_workouts WHERE id = $1 AND user_id = $2)`,
		workoutID, userID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("checking custom workout: %w", err)
	}
	if !exists {
		return nil, ErrNotFound
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionExerciseColumns+`
		 FROM custom_workout_exercises b
		 JOIN exercises e ON e.id = b.exercise_id
		 WHERE b.custom_workout_id = $1
		 ORDER BY b.position`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying custom workout exercises: %w", err)
	}
	defer rows.Close()

	return scanSessionExercises(rows)
}

// ReplaceCustomWorkoutExercises swaps a workout's exercise list for list in
// one transaction.
func (db *DB) ReplaceCustomWorkoutExercises(ctx context.Context, userID int, workoutID uuid.UUID, list []models.SessionExercise) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		var owner int
		err := tx.QueryRow(ctx,
			`SELECT user_id FROM custom_workouts WHERE id = $1 FOR UPDATE`, workoutID).Scan(&owner)
		if err != nil {
			return fmt.Errorf("locking custom workout: %w", notFound(err))
		}
		if owner != userID {
			return ErrNotFound
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM custom_workout_exercises WHERE custom_workout_id = $1`, workoutID); err != nil {
			return fmt.Errorf("clearing custom workout: %w", err)
		}
		return insertBindings(ctx, tx, "custom_workout_exercises", "custom_workout_id", workoutID, list)
	})
}
