package server

import (
	"log/slog"
	"net/http"

	"github.com/claude/fitplay/internal/ingest/catalog"
	"github.com/go-chi/chi/v5"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	db       Store
	catalog  *catalog.Provider
	log      *slog.Logger
	apiKey   string
	weightKg float64
	router   chi.Router
	identity func(http.Handler) http.Handler
	mcp      http.Handler
}

// New creates a new Server with all routes configured. Requests run as the
// local dev user until SetTailscale is called. defaultWeightKg is reported
// to clients for users without a recorded weight.
func New(db Store, catalogProvider *catalog.Provider, apiKey string, defaultWeightKg float64, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		catalog:  catalogProvider,
		log:      log,
		apiKey:   apiKey,
		weightKg: defaultWeightKg,
		router:   chi.NewRouter(),
	}
	s.identity = DevIdentity(db, log)
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale switches request identity to the tailnet user behind each
// connection.
func (s *Server) SetTailscale(lc WhoIser) {
	s.identity = TailscaleIdentity(lc, s.db, s.log)
}

// SetMCP mounts the streamable MCP handler at /mcp. The handler sees the
// same user identity as the REST endpoints.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Catalog ingest (API key required, runs as the seeding user)
	s.router.Group(func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Use(s.identify)
		r.Post("/api/v1/catalog", s.handleCatalogIngest)
	})

	// App endpoints (no API key, tsnet handles access)
	s.router.Group(func(r chi.Router) {
		r.Use(s.identify)

		r.Get("/api/v1/me", s.handleMe)
		r.Get("/api/v1/profile", s.handleProfile)
		r.Put("/api/v1/profile/weight", s.handleSetWeight)

		r.Get("/api/v1/exercises", s.handleListExercises)
		r.Get("/api/v1/challenges", s.handleListChallenges)
		r.Get("/api/v1/challenge-days/{id}/exercises", s.handleChallengeDayExercises)

		r.Get("/api/v1/workouts", s.handleListWorkouts)
		r.Post("/api/v1/workouts", s.handleCreateWorkout)
		r.Get("/api/v1/workouts/{id}/exercises", s.handleWorkoutExercises)
		r.Patch("/api/v1/workouts/{id}/exercises", s.handleEditWorkout)

		r.Post("/api/v1/sessions", s.handleRecordSession)
		r.Get("/api/v1/sessions", s.handleQuerySessions)
		r.Get("/api/v1/sessions/{id}", s.handleGetSession)

		r.Get("/api/v1/stats", s.handleStats)
		r.Get("/api/v1/imports", s.handleImportLogs)

		r.Handle("/mcp", http.HandlerFunc(s.serveMCP))
	})
}

// identify defers to the current identity middleware so SetTailscale can be
// called after routes are built.
func (s *Server) identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.identity(next).ServeHTTP(w, r)
	})
}

func (s *Server) serveMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "mcp not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r)
}
