package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/claude/fitplay/internal/tui"
	"github.com/spf13/cobra"
)

var historyDays int

// NewHistoryCommand prints recently recorded sessions.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if historyDays <= 0 {
				return fmt.Errorf("--days must be positive")
			}
			end := time.Now()
			rows, err := newClient().Sessions(cmd.Context(), end.AddDate(0, 0, -historyDays), end)
			if err != nil {
				return fmt.Errorf("failed to fetch sessions: %w", err)
			}
			if len(rows) == 0 {
				fmt.Println("No sessions recorded")
				return nil
			}

			t := newTable("Started", "Kind", "Done", "Time", "Kcal")
			for _, r := range rows {
				t.Row(
					r.StartedAt.Local().Format("2006-01-02 15:04"),
					string(r.Kind),
					fmt.Sprintf("%d/%d", r.CompletedCount, r.TotalExercises),
					tui.FormatClock(r.TotalTimeSec),
					strconv.Itoa(r.Calories),
				)
			}
			fmt.Println(t.Render())
			return nil
		},
	}
	cmd.Flags().IntVar(&historyDays, "days", 7, "how many days back to show")
	return cmd
}
