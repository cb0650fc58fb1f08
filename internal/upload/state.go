package upload

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SeedFile is a catalog file as last sent to the server.
type SeedFile struct {
	Path       string
	Size       int64
	Hash       string
	Exercises  int
	Challenges int
	SeededAt   time.Time
}

// StateDB remembers which catalog files reached the server so unchanged files
// are not re-sent.
type StateDB struct {
	db *sql.DB
}

const stateSchema = `CREATE TABLE IF NOT EXISTS seed_files (
	path       TEXT PRIMARY KEY,
	size       INTEGER NOT NULL,
	hash       TEXT NOT NULL,
	exercises  INTEGER NOT NULL DEFAULT 0,
	challenges INTEGER NOT NULL DEFAULT 0,
	seeded_at  INTEGER NOT NULL
)`

// OpenStateDB opens the seed state at dir/state.db, creating both if needed.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", filepath.Join(dir, "state.db"))
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}
	if _, err := db.Exec(stateSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}
	return &StateDB{db: db}, nil
}

// Unchanged reports whether f.Path was last seeded with the same size and hash.
func (s *StateDB) Unchanged(f SeedFile) (bool, error) {
	var size int64
	var hash string
	err := s.db.QueryRow(`SELECT size, hash FROM seed_files WHERE path = ?`, f.Path).Scan(&size, &hash)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("checking seed state for %s: %w", f.Path, err)
	}
	return size == f.Size && hash == f.Hash, nil
}

// Mark records f as seeded, replacing any earlier entry for the same path.
// A zero SeededAt is stamped with the current time.
func (s *StateDB) Mark(f SeedFile) error {
	if f.SeededAt.IsZero() {
		f.SeededAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO seed_files (path, size, hash, exercises, challenges, seeded_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (path) DO UPDATE SET
		   size = excluded.size, hash = excluded.hash,
		   exercises = excluded.exercises, challenges = excluded.challenges,
		   seeded_at = excluded.seeded_at`,
		f.Path, f.Size, f.Hash, f.Exercises, f.Challenges, f.SeededAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("marking %s seeded: %w", f.Path, err)
	}
	return nil
}

// List returns every seeded file ordered by path.
func (s *StateDB) List() ([]SeedFile, error) {
	rows, err := s.db.Query(
		`SELECT path, size, hash, exercises, challenges, seeded_at FROM seed_files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("listing seed state: %w", err)
	}
	defer rows.Close()

	var out []SeedFile
	for rows.Next() {
		var f SeedFile
		var at int64
		if err := rows.Scan(&f.Path, &f.Size, &f.Hash, &f.Exercises, &f.Challenges, &at); err != nil {
			return nil, fmt.Errorf("scanning seed state: %w", err)
		}
		f.SeededAt = time.Unix(at, 0)
		out = append(out, f)
	}
	return out, rows.Err()
}

// Reset forgets every seeded file so the next run sends them all again.
func (s *StateDB) Reset() error {
	_, err := s.db.Exec(`DELETE FROM seed_files`)
	return err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// fingerprint returns the size and SHA-256 of the file at path.
func fingerprint(path string) (int64, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, "", err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return 0, "", err
	}
	return n, hex.EncodeToString(h.Sum(nil)), nil
}
