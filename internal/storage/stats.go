package storage

import (
	"context"
	"fmt"
	"time"
)

// ActivityStats holds aggregate statistics about a user's sessions.
type ActivityStats struct {
	TotalSessions     int64      `json:"total_sessions"`
	ChallengeSessions int64      `json:"challenge_sessions"`
	CustomSessions    int64      `json:"custom_sessions"`
	TotalTimeSec      int64      `json:"total_time_sec"`
	TotalCalories     int64      `json:"total_calories"`
	TotalCompleted    int64      `json:"total_exercises_completed"`
	FirstSession      *time.Time `json:"first_session"`
	LastSession       *time.Time `json:"last_session"`
	CurrentStreak     int        `json:"current_streak_days"`
	LongestStreak     int        `json:"longest_streak_days"`
}

// GetActivityStats returns aggregate statistics for a user's sessions. Streaks
// are counted in UTC calendar days relative to now.
func (db *DB) GetActivityStats(ctx context.Context, userID int, now time.Time) (*ActivityStats, error) {
	stats := &ActivityStats{}

	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(*),
		        COUNT(*) FILTER (WHERE kind = 'challenge_day'),
		        COUNT(*) FILTER (WHERE kind = 'custom_workout'),
		        COALESCE(SUM(total_time_sec), 0),
		        COALESCE(SUM(calories), 0),
		        COALESCE(SUM(completed_count), 0),
		        MIN(started_at), MAX(started_at)
		 FROM workout_sessions WHERE user_id = $1`, userID,
	).Scan(&stats.TotalSessions, &stats.ChallengeSessions, &stats.CustomSessions,
		&stats.TotalTimeSec, &stats.TotalCalories, &stats.TotalCompleted,
		&stats.FirstSession, &stats.LastSession)
	if err != nil {
		return nil, fmt.Errorf("querying session totals: %w", err)
	}

	rows, err := db.Pool.Query(ctx,
		`SELECT DISTINCT (started_at AT TIME ZONE 'UTC')::date AS day
		 FROM workout_sessions
		 WHERE user_id = $1
		 ORDER BY day`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying session days: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scanning session day: %w", err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats.CurrentStreak, stats.LongestStreak = streaks(days, now)
	return stats, nil
}

// streaks returns the current and longest runs of consecutive days. days must
// be sorted ascending and distinct. The current streak counts back from today,
// or from yesterday when there is no session yet today.
func streaks(days []time.Time, now time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	run := 0
	var prev time.Time
	for i, d := range days {
		d = truncateDay(d)
		if i > 0 && d.Sub(prev) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
		prev = d
	}

	today := truncateDay(now)
	gap := today.Sub(prev)
	if gap == 0 || gap == 24*time.Hour {
		current = run
	}
	return current, longest
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
