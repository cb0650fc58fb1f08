package ingest

// Result holds the outcome of a catalog ingest.
type Result struct {
	ExercisesReceived  int   `json:"exercises_received"`
	ExercisesUpserted  int64 `json:"exercises_upserted"`
	ChallengesReceived int   `json:"challenges_received"`
	ChallengesUpserted int   `json:"challenges_upserted"`
	ChallengeDays      int   `json:"challenge_days,omitempty"`

	Message string `json:"message,omitempty"`
}
