package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/claude/fitplay/internal/models"
	"github.com/claude/fitplay/internal/session"
)

// Message types delivered to the model
type (
	// StateMsg carries a fresh session snapshot from the player.
	StateMsg session.State

	// SummaryMsg is sent once when the session completes.
	SummaryMsg models.SessionSummary

	// actionMsg reports the outcome of a key-triggered player call.
	actionMsg struct {
		state session.State
		err   error
	}

	// exitedMsg follows a confirmed exit.
	exitedMsg struct{}
)

// Sender is the part of *tea.Program the bridge needs.
type Sender interface {
	Send(msg tea.Msg)
}

// Bridge adapts player callbacks to program messages. Player callbacks may
// fire on the program's own goroutine (from a key action) where a direct
// program.Send would block, so the bridge queues and forwards from Run.
type Bridge struct {
	states  chan tea.Msg
	summary chan tea.Msg
}

// NewBridge returns a bridge ready to be wired into session.Options and the
// session Navigator.
func NewBridge() *Bridge {
	return &Bridge{
		states:  make(chan tea.Msg, 64),
		summary: make(chan tea.Msg, 1),
	}
}

// OnChange queues a state snapshot. Snapshots are dropped while the queue is
// full; the next one supersedes them anyway.
func (b *Bridge) OnChange(st session.State) {
	select {
	case b.states <- StateMsg(st):
	default:
	}
}

// ShowSummary implements session.Navigator.
func (b *Bridge) ShowSummary(s models.SessionSummary) {
	select {
	case b.summary <- SummaryMsg(s):
	default:
	}
}

// Run forwards queued messages to p until ctx is done.
func (b *Bridge) Run(ctx context.Context, p Sender) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-b.states:
			p.Send(msg)
		case msg := <-b.summary:
			p.Send(msg)
		}
	}
}

// doCmd runs a player call off the event loop and reports the result.
func doCmd(ctl Controller, fn func() error) tea.Cmd {
	return func() tea.Msg {
		err := fn()
		return actionMsg{state: ctl.State(), err: err}
	}
}

func exitCmd(ctl Controller) tea.Cmd {
	return func() tea.Msg {
		_ = ctl.Exit(true)
		return exitedMsg{}
	}
}
