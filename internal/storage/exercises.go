package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/claude/fitplay/internal/models"
)

// UpsertExercises batch-inserts catalog exercises, replacing existing rows
// with the same id. Returns the number of rows written.
func (db *DB) UpsertExercises(ctx context.Context, exercises []models.Exercise) (int64, error) {
	if len(exercises) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercises (id, name, target_muscles, met, reps, duration_sec, animation_url, description) VALUES `
	args := make([]any, 0, len(exercises)*8)
	valueStrings := make([]string, 0, len(exercises))

	for i, e := range exercises {
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		muscles := e.TargetMuscles
		if muscles == nil {
			muscles = []string{}
		}
		args = append(args, e.ID, e.Name, muscles, e.MET, e.Reps, e.DurationSec, e.AnimationURL, e.Description)
	}

	query += strings.Join(valueStrings, ",") + `
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, target_muscles = EXCLUDED.target_muscles, met = EXCLUDED.met,
			reps = EXCLUDED.reps, duration_sec = EXCLUDED.duration_sec,
			animation_url = EXCLUDED.animation_url, description = EXCLUDED.description,
			updated_at = NOW()`

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("upserting exercises: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListExercises returns the catalog ordered by name. A non-empty muscle
// restricts the list to exercises targeting it.
func (db *DB) ListExercises(ctx context.Context, muscle string) ([]models.Exercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT id, name, target_muscles, met, reps, duration_sec, animation_url, description
		 FROM exercises
		 WHERE $1 = '' OR $1 = ANY(target_muscles)
		 ORDER BY name`, muscle)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []models.Exercise
	for rows.Next() {
		var e models.Exercise
		if err := rows.Scan(&e.ID, &e.Name, &e.TargetMuscles, &e.MET, &e.Reps, &e.DurationSec,
			&e.AnimationURL, &e.Description); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// sessionExerciseColumns selects a binding joined with its exercise; the
// binding table must be aliased b.
const sessionExerciseColumns = `b.id, b.position, b.reps, b.duration_sec,
	e.id, e.name, e.target_muscles, e.met, e.reps, e.duration_sec, e.animation_url, e.description`

func scanSessionExercises(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]models.SessionExercise, error) {
	var result []models.SessionExercise
	for rows.Next() {
		var se models.SessionExercise
		e := &se.Exercise
		if err := rows.Scan(&se.ID, &se.Position, &se.Reps, &se.DurationSec,
			&e.ID, &e.Name, &e.TargetMuscles, &e.MET, &e.Reps, &e.DurationSec,
			&e.AnimationURL, &e.Description); err != nil {
			return nil, fmt.Errorf("scanning session exercise: %w", err)
		}
		result = append(result, se)
	}
	return result, rows.Err()
}
