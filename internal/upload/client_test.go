package upload

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

func newTestClient(url string) *Client {
	c := NewClient(url, "seed-key")
	c.backoff = time.Millisecond
	return c
}

// TestSendCatalogRetries verifies transient 5xx responses are retried and the
// API key is sent on every attempt.
func TestSendCatalogRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-API-Key") != "seed-key" {
			t.Errorf("X-API-Key = %q", r.Header.Get("X-API-Key"))
		}
		if calls.Add(1) < 3 {
			http.Error(w, "db down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"exercises_received":2,"exercises_upserted":2,"challenges_received":1,"challenges_upserted":1}`))
	}))
	defer srv.Close()

	res, err := newTestClient(srv.URL).SendCatalog(context.Background(), []byte("exercises: []"))
	if err != nil {
		t.Fatalf("SendCatalog: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("attempts = %d, want 3", calls.Load())
	}
	if res.ExercisesUpserted != 2 || res.ChallengesUpserted != 1 {
		t.Errorf("result = %+v", res)
	}
}

// TestSendCatalogGivesUp verifies the client stops after three failed attempts.
func TestSendCatalogGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).SendCatalog(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 3 {
		t.Errorf("attempts = %d, want 3", calls.Load())
	}
}

// TestSendCatalogNoRetryOnClientError verifies 4xx responses fail immediately.
func TestSendCatalogNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "invalid API key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).SendCatalog(context.Background(), nil); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Errorf("attempts = %d, want 1", calls.Load())
	}
}

// TestSessionExercisesPaths verifies each workout kind maps to its endpoint.
func TestSessionExercisesPaths(t *testing.T) {
	id := uuid.New()
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`[{"id":"` + uuid.NewString() + `","position":1,"exercise":{"name":"Plank","met":3,"duration_sec":30}}]`))
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)

	list, err := c.SessionExercises(context.Background(), models.WorkoutRef{Kind: models.KindChallengeDay, ID: id})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/v1/challenge-days/"+id.String()+"/exercises" {
		t.Errorf("path = %s", gotPath)
	}
	if len(list) != 1 || list[0].EffectiveDuration() != 30 {
		t.Errorf("list = %+v", list)
	}

	if _, err := c.SessionExercises(context.Background(), models.WorkoutRef{Kind: models.KindCustomWorkout, ID: id}); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/api/v1/workouts/"+id.String()+"/exercises" {
		t.Errorf("path = %s", gotPath)
	}

	if _, err := c.SessionExercises(context.Background(), models.WorkoutRef{Kind: "weekly_plan", ID: id}); err == nil {
		t.Error("expected error for unknown kind")
	}
}

// TestBodyWeight verifies a missing weight reports ok=false rather than zero.
func TestBodyWeight(t *testing.T) {
	body := `{"user_id":1,"login":"local","weight_kg":null}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()
	c := newTestClient(srv.URL)

	if _, ok, err := c.BodyWeight(context.Background()); err != nil || ok {
		t.Errorf("no weight: ok=%v err=%v", ok, err)
	}

	body = `{"user_id":1,"login":"local","weight_kg":81.5}`
	kg, ok, err := c.BodyWeight(context.Background())
	if err != nil || !ok || kg != 81.5 {
		t.Errorf("weight = %v ok=%v err=%v", kg, ok, err)
	}
}

// TestRecordSession verifies the record is POSTed as JSON exactly once even
// when the server fails.
func TestRecordSession(t *testing.T) {
	var calls atomic.Int32
	var got models.SessionRecord
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &got); err != nil {
			t.Errorf("decoding body: %v", err)
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	rec := models.SessionRecord{
		ID:      uuid.New(),
		Workout: models.WorkoutRef{Kind: models.KindCustomWorkout, ID: uuid.New()},
		Summary: models.SessionSummary{TotalExercises: 3, CompletedCount: 2, CompletedExercise: "2/3", TotalTime: 95, AvgCalorie: 4},
	}
	if err := newTestClient(srv.URL).RecordSession(context.Background(), rec); err == nil {
		t.Fatal("expected error on 502")
	}
	if calls.Load() != 1 {
		t.Errorf("attempts = %d, want 1", calls.Load())
	}
	if got.ID != rec.ID || got.Summary != rec.Summary {
		t.Errorf("server received %+v", got)
	}
}

// TestListings verifies the challenge and workout listings hit their endpoints
// and decode the server's arrays.
func TestListings(t *testing.T) {
	dayID := uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/challenges":
			json.NewEncoder(w).Encode([]models.Challenge{{
				ID: uuid.New(), Name: "30 Day Core",
				Days: []models.ChallengeDay{{ID: dayID, Day: 1}},
			}})
		case "/api/v1/workouts":
			w.Write([]byte(`[]`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	challenges, err := c.Challenges(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(challenges) != 1 || len(challenges[0].Days) != 1 || challenges[0].Days[0].ID != dayID {
		t.Errorf("challenges = %+v", challenges)
	}

	workouts, err := c.Workouts(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(workouts) != 0 {
		t.Errorf("workouts = %+v, want empty", workouts)
	}
}
