package storage

import (
	"context"
	"fmt"

	"github.com/claude/fitplay/internal/models"
)

// GetOrCreateUser finds or creates a user by Tailscale login name.
// Returns the user ID. Updates last_seen and display_name on each call.
func (db *DB) GetOrCreateUser(ctx context.Context, login, displayName string) (int, error) {
	var id int
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO users (login, display_name)
		VALUES ($1, $2)
		ON CONFLICT (login) DO UPDATE
			SET last_seen = NOW(), display_name = COALESCE(NULLIF($2, ''), users.display_name)
		RETURNING id
	`, login, displayName).Scan(&id)
	return id, err
}

// GetProfile returns the profile of a user. WeightKg is nil until set.
func (db *DB) GetProfile(ctx context.Context, userID int) (*models.Profile, error) {
	p := &models.Profile{}
	err := db.Pool.QueryRow(ctx,
		`SELECT id, login, display_name, weight_kg FROM users WHERE id = $1`, userID,
	).Scan(&p.UserID, &p.Login, &p.DisplayName, &p.WeightKg)
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", notFound(err))
	}
	return p, nil
}

// SetWeight records the user's body weight in kilograms.
func (db *DB) SetWeight(ctx context.Context, userID int, kg float64) error {
	tag, err := db.Pool.Exec(ctx,
		`UPDATE users SET weight_kg = $2 WHERE id = $1`, userID, kg)
	if err != nil {
		return fmt.Errorf("updating weight: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
