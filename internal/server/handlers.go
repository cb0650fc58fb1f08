package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const maxWeightKg = 500

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, userInfoFromContext(r))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	profile, err := s.db.GetProfile(r.Context(), uid)
	if err != nil {
		s.storeError(w, "profile", err)
		return
	}
	profile.DefaultWeightKg = s.weightKg
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleSetWeight(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	var body struct {
		WeightKg float64 `json:"weight_kg"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if body.WeightKg <= 0 || body.WeightKg >= maxWeightKg {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "weight_kg must be between 0 and 500"})
		return
	}
	if err := s.db.SetWeight(r.Context(), uid, body.WeightKg); err != nil {
		s.storeError(w, "set weight", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]float64{"weight_kg": body.WeightKg})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := s.db.ListExercises(r.Context(), r.URL.Query().Get("muscle"))
	if err != nil {
		s.storeError(w, "list exercises", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(exercises))
}

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := s.db.ListChallenges(r.Context())
	if err != nil {
		s.storeError(w, "list challenges", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(challenges))
}

func (s *Server) handleChallengeDayExercises(w http.ResponseWriter, r *http.Request) {
	dayID, ok := pathUUID(w, r, "challenge day")
	if !ok {
		return
	}
	list, err := s.db.ChallengeDayExercises(r.Context(), dayID)
	if err != nil {
		s.storeError(w, "challenge day exercises", err)
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(list))
}

// storeError maps storage.ErrNotFound to 404 and everything else to 500.
func (s *Server) storeError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	s.log.Error(op, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func pathUUID(w http.ResponseWriter, r *http.Request, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid " + what + " ID"})
		return uuid.Nil, false
	}
	return id, true
}

// orEmpty keeps nil slices from encoding as null.
func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 7 days
		end = time.Now()
		start = end.AddDate(0, 0, -7)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}

// sessionKind parses the optional kind filter; empty means all kinds.
func sessionKind(s string) (models.WorkoutKind, bool) {
	if s == "" {
		return "", true
	}
	k := models.WorkoutKind(s)
	return k, k.Valid()
}
