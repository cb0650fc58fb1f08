package commands

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/session"
	"github.com/claude/fitplay/internal/tui"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewChallengeCommand plays one day of a challenge.
func NewChallengeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "challenge <day-id>",
		Short: "Play a challenge day",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playWorkout(cmd.Context(), models.KindChallengeDay, args[0])
		},
	}
}

// NewCustomCommand plays one of the user's custom workouts.
func NewCustomCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "custom <workout-id>",
		Short: "Play a custom workout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return playWorkout(cmd.Context(), models.KindCustomWorkout, args[0])
		},
	}
}

func playWorkout(ctx context.Context, kind models.WorkoutKind, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid workout id %q: %w", rawID, err)
	}

	log, closeLog, err := newLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	client := newClient()
	bridge := tui.NewBridge()

	loadCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	player, err := session.Load(loadCtx, models.WorkoutRef{Kind: kind, ID: id},
		client, client, client, bridge,
		session.Options{
			DefaultWeightKg: fallbackWeight(loadCtx, client, log),
			OnChange:        bridge.OnChange,
			Log:             log,
		})
	cancel()
	if err != nil {
		return err
	}
	defer player.Close()

	title := "Challenge day"
	if kind == models.KindCustomWorkout {
		title = "Custom workout"
	}

	prog := tea.NewProgram(tui.New(player, title), tea.WithAltScreen())

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	go bridge.Run(runCtx, prog)

	final, err := prog.Run()
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(tui.Model); ok {
		if s, done := m.Summary(); done {
			fmt.Printf("Completed %s exercises in %s, about %d kcal\n",
				s.CompletedExercise, tui.FormatClock(s.TotalTime), s.AvgCalorie)
		}
	}
	return nil
}
