package storage

import (
	"context"
	"fmt"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UpsertChallenge writes a challenge with its days and replaces each day's
// exercise list, all in one transaction.
func (db *DB) UpsertChallenge(ctx context.Context, c models.Challenge) error {
	return db.inTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO challenges (id, name, description) VALUES ($1, $2, $3)
			 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, updated_at = NOW()`,
			c.ID, c.Name, c.Description)
		if err != nil {
			return fmt.Errorf("upserting challenge %s: %w", c.Name, err)
		}

		for _, day := range c.Days {
			_, err := tx.Exec(ctx,
				`INSERT INTO challenge_days (id, challenge_id, day) VALUES ($1, $2, $3)
				 ON CONFLICT (id) DO UPDATE SET day = EXCLUDED.day`,
				day.ID, c.ID, day.Day)
			if err != nil {
				return fmt.Errorf("upserting challenge day %d: %w", day.Day, err)
			}
			if _, err := tx.Exec(ctx,
				`DELETE FROM challenge_day_exercises WHERE challenge_day_id = $1`, day.ID); err != nil {
				return fmt.Errorf("clearing challenge day %d: %w", day.Day, err)
			}
			if err := insertBindings(ctx, tx, "challenge_day_exercises", "challenge_day_id", day.ID, day.Exercises); err != nil {
				return fmt.Errorf("challenge day %d: %w", day.Day, err)
			}
		}
		return nil
	})
}

// insertBindings inserts an ordered exercise list under the given parent.
// Positions are renumbered from 1 in list order.
func insertBindings(ctx context.Context, tx pgx.Tx, table, parentCol string, parentID uuid.UUID, list []models.SessionExercise) error {
	batch := &pgx.Batch{}
	for i, se := range list {
		id := se.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(
			fmt.Sprintf(`INSERT INTO %s (id, %s, exercise_id, position, reps, duration_sec) VALUES ($1,$2,$3,$4,$5,$6)`, table, parentCol),
			id, parentID, se.Exercise.ID, i+1, se.Reps, se.DurationSec)
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("inserting exercises: %w", err)
	}
	return nil
}

// ListChallenges returns all challenges with their days. Day exercise lists
// are left empty; use ChallengeDayExercises to load one.
func (db *DB) ListChallenges(ctx context.Context) ([]models.Challenge, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT c.id, c.name, c.description, d.id, d.day
		 FROM challenges c
		 LEFT JOIN challenge_days d ON d.challenge_id = c.id
		 ORDER BY c.name, c.id, d.day`)
	if err != nil {
		return nil, fmt.Errorf("querying challenges: %w", err)
	}
	defer rows.Close()

	var result []models.Challenge
	for rows.Next() {
		var (
			c     models.Challenge
			dayID *uuid.UUID
			day   *int
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &dayID, &day); err != nil {
			return nil, fmt.Errorf("scanning challenge: %w", err)
		}
		if n := len(result); n == 0 || result[n-1].ID != c.ID {
			result = append(result, c)
		}
		if dayID != nil && day != nil {
			last := &result[len(result)-1]
			last.Days = append(last.Days, models.ChallengeDay{ID: *dayID, Day: *day})
		}
	}
	return result, rows.Err()
}

// ChallengeDayExercises returns the ordered exercise list of a challenge day.
func (db *DB) ChallengeDayExercises(ctx context.Context, dayID uuid.UUID) ([]models.SessionExercise, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT `+sessionExerciseColumns+`
		 FROM challenge_day_exercises b
		 JOIN exercises e ON e.id = b.exercise_id
		 WHERE b.challenge_day_id = $1
		 ORDER BY b.position`, dayID)
	if err != nil {
		return nil, fmt.Errorf("querying challenge day exercises: %w", err)
	}
	defer rows.Close()

	return scanSessionExercises(rows)
}
