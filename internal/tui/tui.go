// Package tui is the terminal front end of the session player.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/session"
)

// Controller is the player surface the screen drives. *session.Player
// satisfies it.
type Controller interface {
	Start() error
	CompleteExercise() error
	SkipRest() error
	SkipExercise() error
	Exit(confirmed bool) error
	RequiresConfirmation() bool
	State() session.State
	Exercises() []models.SessionExercise
}

var _ Controller = (*session.Player)(nil)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	phaseStyle  = lipgloss.NewStyle().Bold(true)
	restStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	frameStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63")).Padding(1, 2)
	dialogStyle = lipgloss.NewStyle().Border(lipgloss.DoubleBorder()).BorderForeground(lipgloss.Color("203")).Padding(0, 2)
)

// Model renders one session.
type Model struct {
	ctl       Controller
	title     string
	exercises []models.SessionExercise
	state     session.State
	progress  progress.Model

	confirming bool
	summary    *models.SessionSummary
	status     string
	exited     bool
	width      int
}

// New builds the screen for a loaded player.
func New(ctl Controller, title string) Model {
	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40
	return Model{
		ctl:       ctl,
		title:     title,
		exercises: ctl.Exercises(),
		state:     ctl.State(),
		progress:  p,
	}
}

// Summary returns the completion summary once shown.
func (m Model) Summary() (models.SessionSummary, bool) {
	if m.summary == nil {
		return models.SessionSummary{}, false
	}
	return *m.summary, true
}

// Exited reports whether the user left before completion.
func (m Model) Exited() bool { return m.exited }

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if target := msg.Width - 12; target > 10 {
			m.progress.Width = min(target, 60)
		}
		return m, nil

	case StateMsg:
		if m.summary == nil {
			m.state = session.State(msg)
		}
		return m, nil

	case SummaryMsg:
		s := models.SessionSummary(msg)
		m.summary = &s
		m.confirming = false
		m.state.Status = session.StatusCompleted
		return m, nil

	case actionMsg:
		if m.summary == nil {
			m.state = msg.state
		}
		m.status = ""
		if msg.err != nil {
			m.status = describe(msg.err)
		}
		return m, nil

	case exitedMsg:
		m.exited = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if m.summary != nil {
		switch key {
		case "q", "esc", "enter", "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.confirming {
		switch key {
		case "y", "Y":
			m.confirming = false
			return m, exitCmd(m.ctl)
		case "n", "N", "esc":
			m.confirming = false
		}
		return m, nil
	}

	switch key {
	case "s", "enter":
		return m, doCmd(m.ctl, m.ctl.Start)
	case "c":
		return m, doCmd(m.ctl, m.ctl.CompleteExercise)
	case "n":
		if m.state.Status == session.StatusResting {
			return m, doCmd(m.ctl, m.ctl.SkipRest)
		}
		return m, doCmd(m.ctl, m.ctl.SkipExercise)
	case "q", "esc", "ctrl+c":
		if m.ctl.RequiresConfirmation() {
			m.confirming = true
			return m, nil
		}
		return m, exitCmd(m.ctl)
	}
	return m, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, session.ErrInvalidTransition):
		return "not available right now"
	case errors.Is(err, session.ErrConfirmationRequired):
		return "press q again and confirm to exit"
	default:
		return err.Error()
	}
}

func (m Model) View() string {
	if m.summary != nil {
		return frameStyle.Render(renderSummary(m.title, *m.summary))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	st := m.state
	ex := m.exercises[min(st.Index, len(m.exercises)-1)]

	switch {
	case st.Status == session.StatusIdle:
		fmt.Fprintf(&b, "Up next: %s\n", phaseStyle.Render(m.fit(ex.Exercise.Name)))
		b.WriteString(target(ex))
	case st.Phase == session.PhaseRest:
		b.WriteString(restStyle.Render("REST"))
		fmt.Fprintf(&b, "  %s\n", FormatClock(st.Remaining))
		b.WriteString(m.progress.ViewAs(ratio(session.RestSeconds-st.Remaining, session.RestSeconds)))
		if st.Index+1 < len(m.exercises) {
			fmt.Fprintf(&b, "\n\nNext: %s", m.fit(m.exercises[st.Index+1].Exercise.Name))
		}
		b.WriteString("\n")
	default:
		b.WriteString(phaseStyle.Render(m.fit(ex.Exercise.Name)))
		b.WriteString("\n")
		if d := ex.EffectiveDuration(); d > 0 {
			fmt.Fprintf(&b, "%s left\n", FormatClock(st.Remaining))
			b.WriteString(m.progress.ViewAs(ratio(d-st.Remaining, d)))
			b.WriteString("\n")
		} else {
			fmt.Fprintf(&b, "%d reps, press c when done\n", ex.EffectiveReps())
		}
	}

	fmt.Fprintf(&b, "\nExercise %d of %d  |  %d completed  |  %s elapsed\n",
		st.Index+1, st.Total, len(st.Completed), FormatClock(st.Elapsed))

	if m.status != "" {
		b.WriteString(errStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(dimStyle.Render(help(st)))

	out := frameStyle.Render(b.String())
	if m.confirming {
		out += "\n" + dialogStyle.Render("Exit workout? Progress will be lost. (y/n)")
	}
	return out
}

// fit truncates s to the frame's inner width once the terminal size is known.
func (m Model) fit(s string) string {
	if inner := m.width - frameStyle.GetHorizontalFrameSize() - 10; m.width > 0 && inner > 0 {
		return ansi.Truncate(s, inner, "…")
	}
	return s
}

func target(ex models.SessionExercise) string {
	if d := ex.EffectiveDuration(); d > 0 {
		return fmt.Sprintf("%s timed\n", FormatClock(d))
	}
	return fmt.Sprintf("%d reps\n", ex.EffectiveReps())
}

func help(st session.State) string {
	switch st.Status {
	case session.StatusIdle:
		return "s start  n skip  q quit"
	case session.StatusResting:
		return "n skip rest  q exit"
	default:
		return "c complete  n skip  q exit"
	}
}

func renderSummary(title string, s models.SessionSummary) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title + " complete"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Exercises   %s\n", s.CompletedExercise)
	fmt.Fprintf(&b, "Total time  %s\n", FormatClock(s.TotalTime))
	fmt.Fprintf(&b, "Calories    %d kcal\n\n", s.AvgCalorie)
	b.WriteString(dimStyle.Render("enter to close"))
	return b.String()
}

func ratio(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	return min(max(float64(done)/float64(total), 0), 1)
}

// FormatClock renders seconds as MM:SS, or H:MM:SS past an hour.
func FormatClock(sec int) string {
	sec = max(sec, 0)
	if sec >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", sec/3600, sec/60%60, sec%60)
	}
	return fmt.Sprintf("%02d:%02d", sec/60, sec%60)
}
