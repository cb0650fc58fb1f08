package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

// handleRecordSession is the persistence sink for finished sessions.
// Recording is idempotent on the session id: a replay answers 200 with
// "duplicate" instead of 201.
func (s *Server) handleRecordSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var rec models.SessionRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if msg := validateRecord(rec); msg != "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
		return
	}

	inserted, err := s.db.InsertSessionLog(r.Context(), models.SessionLogFromRecord(uid, rec))
	if err != nil {
		s.storeError(w, "record session", err)
		return
	}
	if !inserted {
		writeJSON(w, http.StatusOK, map[string]any{"id": rec.ID, "status": "duplicate"})
		return
	}
	s.log.Info("session recorded",
		"session_id", rec.ID,
		"kind", rec.Workout.Kind,
		"completed", rec.Summary.CompletedExercise,
		"total_time", rec.Summary.TotalTime,
		"calories", rec.Summary.AvgCalorie)
	writeJSON(w, http.StatusCreated, map[string]any{"id": rec.ID, "status": "recorded"})
}

func validateRecord(rec models.SessionRecord) string {
	switch {
	case rec.ID == uuid.Nil:
		return "id is required"
	case !rec.Workout.Kind.Valid():
		return "workout.kind must be challenge_day or custom_workout"
	case rec.Workout.ID == uuid.Nil:
		return "workout.id is required"
	case rec.StartedAt.IsZero() || rec.EndedAt.IsZero():
		return "started_at and ended_at are required"
	case rec.EndedAt.Before(rec.StartedAt):
		return "ended_at is before started_at"
	case rec.Summary.TotalExercises <= 0:
		return "summary.total_exercises must be positive"
	case rec.Summary.CompletedCount < 0 || rec.Summary.CompletedCount > rec.Summary.TotalExercises:
		return "summary.completed_count out of range"
	case rec.Summary.TotalTime < 0 || rec.Summary.AvgCalorie < 0:
		return "summary totals must not be negative"
	}
	return ""
}

func (s *Server) handleQuerySessions(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	kind, ok := sessionKind(r.URL.Query().Get("kind"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be challenge_day or custom_workout"})
		return
	}

	rows, err := s.db.QuerySessionLogs(r.Context(), uid, start, end, kind)
	if err != nil {
		s.storeError(w, "query sessions", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(rows))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	id, ok := pathUUID(w, r, "session")
	if !ok {
		return
	}
	row, err := s.db.GetSessionLog(r.Context(), uid, id)
	if err != nil {
		s.storeError(w, "get session", err)
		return
	}
	writeJSON(w, http.StatusOK, row)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	stats, err := s.db.GetActivityStats(r.Context(), uid, time.Now())
	if err != nil {
		s.storeError(w, "activity stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
