// Package catalog parses and stores YAML catalog files of exercises and
// challenges.
package catalog

import (
	"fmt"
	"io"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// namespace seeds the deterministic ids derived from catalog keys, so
// re-importing a file updates rows in place.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://fitplay.local/catalog"))

// Catalog is a parsed catalog file with ids assigned.
type Catalog struct {
	Exercises  []models.Exercise
	Challenges []models.Challenge
}

// Days returns the number of challenge days across all challenges.
func (c *Catalog) Days() int {
	n := 0
	for _, ch := range c.Challenges {
		n += len(ch.Days)
	}
	return n
}

func ExerciseID(key string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("exercise:"+key))
}

func ChallengeID(key string) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("challenge:"+key))
}

func dayID(challengeKey string, day int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte("challenge:"+challengeKey+":day:"+strconv.Itoa(day)))
}

func bindingID(challengeKey string, day, pos int) uuid.UUID {
	return uuid.NewSHA1(namespace, []byte(fmt.Sprintf("challenge:%s:day:%d:pos:%d", challengeKey, day, pos)))
}

// Parse reads a YAML catalog file and validates it.
func Parse(r io.Reader) (*Catalog, error) {
	var file models.CatalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if err == io.EOF {
			return &Catalog{}, nil
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	return Build(file)
}

// Build validates a decoded catalog file and assigns ids.
func Build(file models.CatalogFile) (*Catalog, error) {
	out := &Catalog{}
	byKey := make(map[string]models.Exercise, len(file.Exercises))

	for i, ce := range file.Exercises {
		key := strings.TrimSpace(ce.Key)
		if key == "" {
			return nil, fmt.Errorf("exercise %d: key is required", i+1)
		}
		if _, dup := byKey[key]; dup {
			return nil, fmt.Errorf("exercise %q: duplicate key", key)
		}
		if strings.TrimSpace(ce.Name) == "" {
			return nil, fmt.Errorf("exercise %q: name is required", key)
		}
		if ce.MET < 0 || math.IsNaN(ce.MET) || math.IsInf(ce.MET, 0) {
			return nil, fmt.Errorf("exercise %q: met must be a non-negative number", key)
		}
		if err := checkOptional(ce.Reps, "reps"); err != nil {
			return nil, fmt.Errorf("exercise %q: %w", key, err)
		}
		if err := checkOptional(ce.DurationSec, "duration_sec"); err != nil {
			return nil, fmt.Errorf("exercise %q: %w", key, err)
		}

		ex := models.Exercise{
			ID:            ExerciseID(key),
			Name:          ce.Name,
			TargetMuscles: normalizeMuscles(ce.Muscles),
			MET:           ce.MET,
			Reps:          ce.Reps,
			DurationSec:   ce.DurationSec,
			AnimationURL:  ce.AnimationURL,
			Description:   ce.Description,
		}
		byKey[key] = ex
		out.Exercises = append(out.Exercises, ex)
	}

	seen := make(map[string]bool, len(file.Challenges))
	for i, cc := range file.Challenges {
		key := strings.TrimSpace(cc.Key)
		if key == "" {
			return nil, fmt.Errorf("challenge %d: key is required", i+1)
		}
		if seen[key] {
			return nil, fmt.Errorf("challenge %q: duplicate key", key)
		}
		seen[key] = true
		if strings.TrimSpace(cc.Name) == "" {
			return nil, fmt.Errorf("challenge %q: name is required", key)
		}

		ch := models.Challenge{ID: ChallengeID(key), Name: cc.Name, Description: cc.Description}
		days := make(map[int]bool, len(cc.Days))
		for _, cd := range cc.Days {
			if cd.Day <= 0 {
				return nil, fmt.Errorf("challenge %q: day must be positive, got %d", key, cd.Day)
			}
			if days[cd.Day] {
				return nil, fmt.Errorf("challenge %q: duplicate day %d", key, cd.Day)
			}
			days[cd.Day] = true
			if len(cd.Exercises) == 0 {
				return nil, fmt.Errorf("challenge %q day %d: no exercises", key, cd.Day)
			}

			day := models.ChallengeDay{ID: dayID(key, cd.Day), Day: cd.Day}
			for pos, entry := range cd.Exercises {
				ex, ok := byKey[entry.Exercise]
				if !ok {
					return nil, fmt.Errorf("challenge %q day %d: unknown exercise %q", key, cd.Day, entry.Exercise)
				}
				if err := checkOptional(entry.Reps, "reps"); err != nil {
					return nil, fmt.Errorf("challenge %q day %d: %w", key, cd.Day, err)
				}
				if err := checkOptional(entry.DurationSec, "duration_sec"); err != nil {
					return nil, fmt.Errorf("challenge %q day %d: %w", key, cd.Day, err)
				}
				se := models.SessionExercise{
					ID:          bindingID(key, cd.Day, pos+1),
					Position:    pos + 1,
					Exercise:    ex,
					Reps:        entry.Reps,
					DurationSec: entry.DurationSec,
				}
				if !se.Playable() {
					return nil, fmt.Errorf("challenge %q day %d: exercise %q has neither reps nor duration",
						key, cd.Day, entry.Exercise)
				}
				day.Exercises = append(day.Exercises, se)
			}
			ch.Days = append(ch.Days, day)
		}
		out.Challenges = append(out.Challenges, ch)
	}

	return out, nil
}

func checkOptional(v *int, field string) error {
	if v != nil && *v <= 0 {
		return fmt.Errorf("%s must be positive, got %d", field, *v)
	}
	return nil
}

func normalizeMuscles(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, m := range in {
		m = strings.ToLower(strings.TrimSpace(m))
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// Files returns the .yaml and .yml files under dir, sorted by path.
func Files(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}
