package commands

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

// NewListCommand prints the challenge days and custom workouts that can be played.
func NewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List playable challenge days and custom workouts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := newClient()

			challenges, err := client.Challenges(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch challenges: %w", err)
			}
			workouts, err := client.Workouts(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to fetch workouts: %w", err)
			}

			days := newTable("Challenge", "Day", "ID")
			for _, c := range challenges {
				for _, d := range c.Days {
					days.Row(c.Name, strconv.Itoa(d.Day), d.ID.String())
				}
			}
			custom := newTable("Workout", "Exercises", "ID")
			for _, w := range workouts {
				custom.Row(w.Name, strconv.Itoa(w.Exercises), w.ID.String())
			}

			fmt.Println(days.Render())
			fmt.Println(custom.Render())
			return nil
		},
	}
}

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86")).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}
