package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/workout"
	"github.com/google/uuid"
)

// workoutEntry is one exercise in a create-workout request.
type workoutEntry struct {
	ExerciseID  uuid.UUID `json:"exercise_id"`
	Reps        *int      `json:"reps,omitempty"`
	DurationSec *int      `json:"duration_sec,omitempty"`
}

type createWorkoutRequest struct {
	Name      string         `json:"name"`
	Exercises []workoutEntry `json:"exercises"`
}

func (s *Server) handleListWorkouts(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	workouts, err := s.db.ListCustomWorkouts(r.Context(), uid)
	if err != nil {
		s.storeError(w, "list workouts", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(workouts))
}

func (s *Server) handleCreateWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var req createWorkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}
	if len(req.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "at least one exercise is required"})
		return
	}

	catalog, err := s.db.ListExercises(r.Context(), "")
	if err != nil {
		s.storeError(w, "list exercises", err)
		return
	}
	byID := make(map[uuid.UUID]models.Exercise, len(catalog))
	for _, ex := range catalog {
		byID[ex.ID] = ex
	}

	list := make([]models.SessionExercise, 0, len(req.Exercises))
	for i, e := range req.Exercises {
		ex, found := byID[e.ExerciseID]
		if !found {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("exercise %d: unknown exercise %s", i, e.ExerciseID)})
			return
		}
		se := models.SessionExercise{
			ID:          uuid.New(),
			Position:    i + 1,
			Exercise:    ex,
			Reps:        e.Reps,
			DurationSec: e.DurationSec,
		}
		if !se.Playable() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": fmt.Sprintf("exercise %d: %s has no reps or duration", i, ex.Name)})
			return
		}
		list = append(list, se)
	}

	created, err := s.db.CreateCustomWorkout(r.Context(), uid, req.Name, list)
	if err != nil {
		s.storeError(w, "create workout", err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleWorkoutExercises(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "workout")
	if !ok {
		return
	}
	list, err := s.db.CustomWorkoutExercises(r.Context(), uid, id)
	if err != nil {
		s.storeError(w, "workout exercises", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// handleEditWorkout applies a batch of edit ops to a workout. The batch is
// all-or-nothing: any invalid op leaves the stored list untouched.
func (s *Server) handleEditWorkout(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "workout")
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "reading body: " + err.Error()})
		return
	}
	ops, err := workout.DecodeAll(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	current, err := s.db.CustomWorkoutExercises(r.Context(), uid, id)
	if err != nil {
		s.storeError(w, "workout exercises", err)
		return
	}
	edited, err := workout.Apply(current, ops...)
	if err != nil {
		if errors.Is(err, workout.ErrIndexOutOfRange) || errors.Is(err, workout.ErrInvalidValue) ||
			errors.Is(err, workout.ErrEmptyWorkout) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("edit workout", "workout_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	if err := s.db.ReplaceCustomWorkoutExercises(r.Context(), uid, id, edited); err != nil {
		s.storeError(w, "replace workout exercises", err)
		return
	}
	s.log.Info("workout edited", "workout_id", id, "ops", len(ops), "exercises", len(edited))
	writeJSON(w, http.StatusOK, edited)
}
