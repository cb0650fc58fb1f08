package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/claude/fitplay/internal/ingest"
	"github.com/claude/fitplay/internal/ingest/catalog"
	"github.com/claude/fitplay/internal/storage"
)

const maxCatalogBytes = 10 << 20

// handleCatalogIngest stores an uploaded YAML catalog. Files that fail to
// parse are rejected with 400 before anything is written.
func (s *Server) handleCatalogIngest(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	start := time.Now()

	cat, err := catalog.Parse(http.MaxBytesReader(w, r.Body, maxCatalogBytes))
	if err != nil {
		s.log.Warn("catalog rejected", "error", err)
		s.logImport(uid, "catalog", &ingest.Result{}, err, int(time.Since(start).Milliseconds()))
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.catalog.Store(r.Context(), cat)
	if err != nil {
		s.log.Error("catalog ingest error", "error", err)
		s.logImport(uid, "catalog", &ingest.Result{
			ExercisesReceived:  len(cat.Exercises),
			ChallengesReceived: len(cat.Challenges),
		}, err, int(time.Since(start).Milliseconds()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	s.logImport(uid, "catalog", result, nil, int(time.Since(start).Milliseconds()))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleImportLogs(w http.ResponseWriter, r *http.Request) {
	uid, ok := mustUserID(w, r)
	if !ok {
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	logs, err := s.db.QueryImportLogs(r.Context(), uid, limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, orEmpty(logs))
}

// logImport records an import operation's result to the import_logs table.
func (s *Server) logImport(uid int, source string, result *ingest.Result, importErr error, durationMs int) {
	status := "success"
	var errMsg *string
	if importErr != nil {
		status = "error"
		msg := importErr.Error()
		errMsg = &msg
	}

	log := storage.ImportLog{
		UserID:             uid,
		Source:             source,
		Status:             status,
		ExercisesReceived:  result.ExercisesReceived,
		ExercisesUpserted:  result.ExercisesUpserted,
		ChallengesReceived: result.ChallengesReceived,
		ChallengesUpserted: result.ChallengesUpserted,
		DurationMs:         &durationMs,
		ErrorMessage:       errMsg,
	}

	ctx, cancel := contextWithTimeout()
	defer cancel()

	if _, err := s.db.InsertImportLog(ctx, log); err != nil {
		s.log.Error("failed to log import", "source", source, "error", err)
	}
}

// contextWithTimeout returns a background context with a 5-second timeout for async logging.
func contextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
}
