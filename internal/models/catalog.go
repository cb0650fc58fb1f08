package models

// CatalogFile is the seed format for exercises and challenges. Exercises and
// challenges are referenced by stable keys so re-imports update in place.
type CatalogFile struct {
	Exercises  []CatalogExercise  `yaml:"exercises" json:"exercises"`
	Challenges []CatalogChallenge `yaml:"challenges" json:"challenges"`
}

type CatalogExercise struct {
	Key          string   `yaml:"key" json:"key"`
	Name         string   `yaml:"name" json:"name"`
	Muscles      []string `yaml:"muscles" json:"muscles"`
	MET          float64  `yaml:"met" json:"met"`
	Reps         *int     `yaml:"reps,omitempty" json:"reps,omitempty"`
	DurationSec  *int     `yaml:"duration_sec,omitempty" json:"duration_sec,omitempty"`
	AnimationURL string   `yaml:"animation_url,omitempty" json:"animation_url,omitempty"`
	Description  string   `yaml:"description,omitempty" json:"description,omitempty"`
}

type CatalogChallenge struct {
	Key         string                `yaml:"key" json:"key"`
	Name        string                `yaml:"name" json:"name"`
	Description string                `yaml:"description,omitempty" json:"description,omitempty"`
	Days        []CatalogChallengeDay `yaml:"days" json:"days"`
}

type CatalogChallengeDay struct {
	Day       int               `yaml:"day" json:"day"`
	Exercises []CatalogDayEntry `yaml:"exercises" json:"exercises"`
}

// CatalogDayEntry references a catalog exercise by key with optional overrides.
type CatalogDayEntry struct {
	Exercise    string `yaml:"exercise" json:"exercise"`
	Reps        *int   `yaml:"reps,omitempty" json:"reps,omitempty"`
	DurationSec *int   `yaml:"duration_sec,omitempty" json:"duration_sec,omitempty"`
}
