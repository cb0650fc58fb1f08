package importer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fitplay/internal/ingest/catalog"
)

// Stats tracks import progress.
type Stats struct {
	FilesProcessed int
	FilesSkipped   int
	FilesErrored   int

	ExercisesUpserted  int64
	ChallengesUpserted int
	ChallengeDays      int
}

// Importer reads catalog files from a directory and writes them straight to the DB.
type Importer struct {
	provider *catalog.Provider
	log      *slog.Logger
	dryRun   bool
	stats    Stats
}

// New creates a new Importer.
func New(db catalog.Store, log *slog.Logger, dryRun bool) *Importer {
	return &Importer{provider: catalog.NewProvider(db, log), log: log, dryRun: dryRun}
}

// Import processes all catalog files under dir. Files that fail to parse are
// logged and counted; a storage failure aborts the import.
func (imp *Importer) Import(ctx context.Context, dir string) (*Stats, error) {
	files, err := catalog.Files(dir)
	if err != nil {
		return &imp.stats, err
	}

	for _, f := range files {
		if err := imp.importFile(ctx, f); err != nil {
			return &imp.stats, fmt.Errorf("importing %s: %w", filepath.Base(f), err)
		}
	}
	return &imp.stats, nil
}

func (imp *Importer) importFile(ctx context.Context, path string) error {
	fh, err := os.Open(path)
	if err != nil {
		imp.log.Warn("open failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}
	cat, err := catalog.Parse(fh)
	fh.Close()
	if err != nil {
		imp.log.Warn("parse failed", "file", path, "error", err)
		imp.stats.FilesErrored++
		return nil
	}

	if len(cat.Exercises) == 0 && len(cat.Challenges) == 0 {
		imp.stats.FilesSkipped++
		return nil
	}

	imp.stats.FilesProcessed++
	if imp.dryRun {
		imp.stats.ExercisesUpserted += int64(len(cat.Exercises))
		imp.stats.ChallengesUpserted += len(cat.Challenges)
		imp.stats.ChallengeDays += cat.Days()
		return nil
	}

	res, err := imp.provider.Store(ctx, cat)
	if err != nil {
		return err
	}
	imp.stats.ExercisesUpserted += res.ExercisesUpserted
	imp.stats.ChallengesUpserted += res.ChallengesUpserted
	imp.stats.ChallengeDays += res.ChallengeDays
	return nil
}
