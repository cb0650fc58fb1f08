package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/claude/fitplay/internal/ingest"
	"github.com/claude/fitplay/internal/models"
)

// Store is the subset of storage.DB the provider writes to.
type Store interface {
	UpsertExercises(ctx context.Context, exercises []models.Exercise) (int64, error)
	UpsertChallenge(ctx context.Context, c models.Challenge) error
}

// Provider ingests YAML catalog files.
type Provider struct {
	db  Store
	log *slog.Logger
}

// NewProvider creates a new catalog ingest provider.
func NewProvider(db Store, log *slog.Logger) *Provider {
	return &Provider{db: db, log: log}
}

// Ingest parses a catalog file and stores its exercises and challenges.
// Exercises are written first so challenge days can reference them.
func (p *Provider) Ingest(ctx context.Context, r io.Reader) (*ingest.Result, error) {
	cat, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return p.Store(ctx, cat)
}

// Store writes an already-parsed catalog.
func (p *Provider) Store(ctx context.Context, cat *Catalog) (*ingest.Result, error) {
	result := &ingest.Result{
		ExercisesReceived:  len(cat.Exercises),
		ChallengesReceived: len(cat.Challenges),
		ChallengeDays:      cat.Days(),
	}

	n, err := p.db.UpsertExercises(ctx, cat.Exercises)
	if err != nil {
		return nil, fmt.Errorf("storing exercises: %w", err)
	}
	result.ExercisesUpserted = n

	for _, ch := range cat.Challenges {
		if err := p.db.UpsertChallenge(ctx, ch); err != nil {
			return nil, fmt.Errorf("storing challenge %s: %w", ch.Name, err)
		}
		result.ChallengesUpserted++
	}

	p.log.Info("catalog ingested",
		"exercises", result.ExercisesUpserted,
		"challenges", result.ChallengesUpserted,
		"days", result.ChallengeDays)
	return result, nil
}
