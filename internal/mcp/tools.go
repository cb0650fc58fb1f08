package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/claude/fitplay/internal/calorie"
	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/storage"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultTimeRange returns start/end defaulting to the last 7 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -7)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetSessions = mcp.NewTool("get_sessions",
	mcp.WithDescription("List completed workout sessions with exercise counts, total time and estimated calories."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 7 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
	mcp.WithString("kind", mcp.Description("Only sessions of this workout kind."), mcp.Enum(string(models.KindChallengeDay), string(models.KindCustomWorkout))),
)

var toolGetActivityStats = mcp.NewTool("get_activity_stats",
	mcp.WithDescription("Lifetime session totals plus the current and longest daily workout streak."),
)

var toolListExercises = mcp.NewTool("list_exercises",
	mcp.WithDescription("List catalog exercises, optionally only those that train a given muscle."),
	mcp.WithString("muscle", mcp.Description("Target muscle (e.g. core, legs, chest)")),
)

var toolListChallenges = mcp.NewTool("list_challenges",
	mcp.WithDescription("List challenges and their days. Use a day id with get_workout_exercises to see its exercises."),
)

var toolGetWorkoutExercises = mcp.NewTool("get_workout_exercises",
	mcp.WithDescription("Ordered exercise list of a challenge day or custom workout, with effective reps and durations."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Workout kind"), mcp.Enum(string(models.KindChallengeDay), string(models.KindCustomWorkout))),
	mcp.WithString("id", mcp.Required(), mcp.Description("Challenge day id or custom workout id")),
)

var toolEstimateCalories = mcp.NewTool("estimate_calories",
	mcp.WithDescription("Estimate calories for playing a whole challenge day or custom workout (MET based; reps-only exercises count zero)."),
	mcp.WithString("kind", mcp.Required(), mcp.Description("Workout kind"), mcp.Enum(string(models.KindChallengeDay), string(models.KindCustomWorkout))),
	mcp.WithString("id", mcp.Required(), mcp.Description("Challenge day id or custom workout id")),
	mcp.WithNumber("weight_kg", mcp.Description("Body weight in kg. Defaults to the user's recorded weight, then the server default.")),
)

// --- Tool handlers ---

func (h *handlers) getSessions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}
	kind := models.WorkoutKind(req.GetString("kind", ""))
	if kind != "" && !kind.Valid() {
		return mcp.NewToolResultError("kind must be challenge_day or custom_workout"), nil
	}

	uid := UserIDFromContext(ctx)
	rows, err := h.ds.QuerySessionLogs(ctx, uid, start, end, kind)
	if err != nil {
		h.log.Error("mcp get_sessions", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(rows)
}

func (h *handlers) getActivityStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetActivityStats(ctx, UserIDFromContext(ctx), time.Now())
	if err != nil {
		h.log.Error("mcp get_activity_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(stats)
}

func (h *handlers) listExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercises, err := h.ds.ListExercises(ctx, req.GetString("muscle", ""))
	if err != nil {
		h.log.Error("mcp list_exercises", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(exercises)
}

func (h *handlers) listChallenges(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	challenges, err := h.ds.ListChallenges(ctx)
	if err != nil {
		h.log.Error("mcp list_challenges", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	return jsonResult(challenges)
}

func (h *handlers) getWorkoutExercises(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, errResult := h.loadWorkout(ctx, req, "get_workout_exercises")
	if errResult != nil {
		return errResult, nil
	}

	type entry struct {
		Position    int      `json:"position"`
		Name        string   `json:"name"`
		Muscles     []string `json:"target_muscles"`
		Reps        int      `json:"reps,omitempty"`
		DurationSec int      `json:"duration_sec,omitempty"`
		MET         float64  `json:"met"`
	}
	out := make([]entry, len(list))
	for i, se := range list {
		out[i] = entry{
			Position:    se.Position,
			Name:        se.Exercise.Name,
			Muscles:     se.Exercise.TargetMuscles,
			Reps:        se.EffectiveReps(),
			DurationSec: se.EffectiveDuration(),
			MET:         se.Exercise.MET,
		}
	}
	return jsonResult(out)
}

func (h *handlers) estimateCalories(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	weight, source := req.GetFloat("weight_kg", 0), "argument"
	if _, given := req.GetArguments()["weight_kg"]; given && weight <= 0 {
		return mcp.NewToolResultError("weight_kg must be positive"), nil
	}
	if weight <= 0 {
		weight, source = h.userWeight(ctx)
	}
	list, errResult := h.loadWorkout(ctx, req, "estimate_calories")
	if errResult != nil {
		return errResult, nil
	}

	var timed, seconds int
	for _, se := range list {
		if d := se.EffectiveDuration(); d > 0 {
			timed++
			seconds += d
		}
	}
	kcal := calorie.Estimate(list, seconds, weight)
	return jsonResult(map[string]any{
		"exercises":       len(list),
		"timed_exercises": timed,
		"timed_seconds":   seconds,
		"weight_kg":       weight,
		"weight_source":   source,
		"kcal":            kcal,
		"kcal_rounded":    calorie.Round(kcal),
	})
}

// userWeight returns the caller's recorded weight, falling back to the
// default reported by the profile and then to the configured default.
func (h *handlers) userWeight(ctx context.Context) (float64, string) {
	fallback := h.defaultWeightKg
	if fallback <= 0 {
		fallback = models.DefaultWeightKg
	}
	p, err := h.ds.GetProfile(ctx, UserIDFromContext(ctx))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.log.Warn("mcp profile lookup failed, using default weight", "error", err)
		}
		return fallback, "default"
	}
	if p.DefaultWeightKg > 0 {
		fallback = p.DefaultWeightKg
	}
	if w := p.EffectiveWeightKg(0); w > 0 {
		return w, "profile"
	}
	return fallback, "default"
}

// loadWorkout resolves the kind/id arguments to an exercise list. A non-nil
// result is a tool error to hand back to the client.
func (h *handlers) loadWorkout(ctx context.Context, req mcp.CallToolRequest, tool string) ([]models.SessionExercise, *mcp.CallToolResult) {
	kindStr, err := req.RequireString("kind")
	if err != nil {
		return nil, mcp.NewToolResultError("kind parameter is required")
	}
	idStr, err := req.RequireString("id")
	if err != nil {
		return nil, mcp.NewToolResultError("id parameter is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, mcp.NewToolResultError("invalid id: " + err.Error())
	}

	var list []models.SessionExercise
	switch models.WorkoutKind(kindStr) {
	case models.KindChallengeDay:
		list, err = h.ds.ChallengeDayExercises(ctx, id)
	case models.KindCustomWorkout:
		list, err = h.ds.CustomWorkoutExercises(ctx, UserIDFromContext(ctx), id)
	default:
		return nil, mcp.NewToolResultError("kind must be challenge_day or custom_workout")
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil, mcp.NewToolResultError("workout not found")
	}
	if err != nil {
		h.log.Error("mcp "+tool, "error", err)
		return nil, mcp.NewToolResultError("query failed: " + err.Error())
	}
	return list, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	result, err := mcp.NewToolResultJSON(v)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
