package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) int {
	if id, ok := ctx.Value(userIDKey).(int); ok {
		return id
	}
	return 1
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
// defaultWeightKg is used for calorie estimates when the user has no
// recorded weight.
func New(ds DataSource, version string, defaultWeightKg float64, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("FitPlay", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("FitPlay workout server. Browse the exercise catalog and challenges, inspect workout lists, review completed sessions and streaks, and estimate calories for a workout. Session data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log, defaultWeightKg: defaultWeightKg}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetSessions, Handler: h.getSessions},
		server.ServerTool{Tool: toolGetActivityStats, Handler: h.getActivityStats},
		server.ServerTool{Tool: toolListExercises, Handler: h.listExercises},
		server.ServerTool{Tool: toolListChallenges, Handler: h.listChallenges},
		server.ServerTool{Tool: toolGetWorkoutExercises, Handler: h.getWorkoutExercises},
		server.ServerTool{Tool: toolEstimateCalories, Handler: h.estimateCalories},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSessions, Handler: h.recentSessions},
		server.ServerResource{Resource: resExerciseCatalog, Handler: h.exerciseCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds              DataSource
	log             *slog.Logger
	defaultWeightKg float64
}

// --- Resource definitions ---

var resRecentSessions = mcp.NewResource(
	"fitplay://recent_sessions",
	"Recent Sessions",
	mcp.WithResourceDescription("Completed workout sessions from the last 14 days"),
	mcp.WithMIMEType("application/json"),
)

var resExerciseCatalog = mcp.NewResource(
	"fitplay://exercise_catalog",
	"Exercise Catalog",
	mcp.WithResourceDescription("Every exercise with its target muscles, MET value and default reps or duration"),
	mcp.WithMIMEType("application/json"),
)
