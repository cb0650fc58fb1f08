package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/claude/fitplay/internal/ingest/catalog"
)

// Stats tracks upload progress.
type Stats struct {
	FilesTotal    int
	FilesUploaded int
	FilesSkipped  int
	FilesErrored  int

	ExercisesSent  int
	ChallengesSent int
}

// Uploader walks a catalog directory, validates each file locally and POSTs
// it to the FitPlay server. Files already uploaded with the same size and
// hash are skipped.
type Uploader struct {
	client *Client
	state  *StateDB
	dir    string
	dryRun bool
	log    *slog.Logger
	stats  Stats
}

// New creates a new Uploader. client may be nil in dry-run mode.
func New(client *Client, state *StateDB, dir string, dryRun bool, log *slog.Logger) *Uploader {
	return &Uploader{
		client: client,
		state:  state,
		dir:    dir,
		dryRun: dryRun,
		log:    log,
	}
}

// Run executes the upload pipeline.
func (u *Uploader) Run(ctx context.Context) (*Stats, error) {
	files, err := catalog.Files(u.dir)
	if err != nil {
		return &u.stats, err
	}

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return &u.stats, err
		}
		u.stats.FilesTotal++
		u.processFile(ctx, f)
	}
	return &u.stats, nil
}

func (u *Uploader) processFile(ctx context.Context, path string) {
	relPath, _ := filepath.Rel(u.dir, path)
	size, hash, err := fingerprint(path)
	if err != nil {
		u.log.Warn("hash failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	rec := SeedFile{Path: relPath, Size: size, Hash: hash}

	unchanged, err := u.state.Unchanged(rec)
	if err != nil {
		u.log.Warn("state check failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	if unchanged {
		u.stats.FilesSkipped++
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		u.log.Warn("read failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	cat, err := catalog.Parse(bytes.NewReader(data))
	if err != nil {
		u.log.Warn("parse failed", "file", path, "error", err)
		u.stats.FilesErrored++
		return
	}
	if len(cat.Exercises) == 0 && len(cat.Challenges) == 0 {
		u.stats.FilesSkipped++
		// Empty files are remembered so they are not re-parsed
		_ = u.state.Mark(rec)
		return
	}

	if u.dryRun {
		u.stats.FilesUploaded++
		u.stats.ExercisesSent += len(cat.Exercises)
		u.stats.ChallengesSent += len(cat.Challenges)
		return
	}

	result, err := u.client.SendCatalog(ctx, data)
	if err != nil {
		u.log.Error("upload failed", "file", relPath, "error", err)
		u.stats.FilesErrored++
		return
	}
	rec.Exercises = int(result.ExercisesUpserted)
	rec.Challenges = result.ChallengesUpserted
	if err := u.state.Mark(rec); err != nil {
		u.log.Warn("marking uploaded failed", "file", relPath, "error", err)
	}

	u.stats.FilesUploaded++
	u.stats.ExercisesSent += result.ExercisesReceived
	u.stats.ChallengesSent += result.ChallengesReceived
	u.log.Info("uploaded", "file", relPath,
		"exercises", result.ExercisesUpserted, "challenges", result.ChallengesUpserted)
}

// Summary formats stats for the command-line report.
func (s *Stats) Summary() string {
	return fmt.Sprintf("files: %d total, %d uploaded, %d skipped, %d errored; exercises: %d; challenges: %d",
		s.FilesTotal, s.FilesUploaded, s.FilesSkipped, s.FilesErrored, s.ExercisesSent, s.ChallengesSent)
}
