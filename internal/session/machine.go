// Package session drives a user through an ordered exercise list: per-exercise
// countdowns, fixed rest periods, completion tracking and the final summary.
package session

import (
	"errors"
	"fmt"
	"sort"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

// RestSeconds is the rest inserted after every exercise except the last.
const RestSeconds = 120

var (
	ErrNoExercises          = errors.New("no exercises found")
	ErrUnplayableExercise   = errors.New("exercise has neither reps nor duration")
	ErrInvalidTransition    = errors.New("invalid session transition")
	ErrConfirmationRequired = errors.New("exit discards progress and must be confirmed")
)

// Status is the lifecycle state of a session.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusActive    Status = "active"
	StatusResting   Status = "resting"
	StatusCompleted Status = "completed"
	StatusExited    Status = "exited"
)

// Phase distinguishes performing an exercise from resting after it.
type Phase string

const (
	PhaseExercise Phase = "exercise"
	PhaseRest     Phase = "rest"
)

// State is a snapshot of a session for presentation.
type State struct {
	Index     int         `json:"index"`
	Total     int         `json:"total"`
	Phase     Phase       `json:"phase"`
	Status    Status      `json:"status"`
	Remaining int         `json:"remaining"`
	Elapsed   int         `json:"elapsed"`
	Completed []uuid.UUID `json:"completed"`
}

// Machine is the session state machine. It is not safe for concurrent use;
// Player serializes access.
type Machine struct {
	exercises []models.SessionExercise
	index     int
	phase     Phase
	status    Status

	elapsed   *Timer
	countdown *Timer

	completed  map[uuid.UUID]struct{}
	onComplete func(State)
}

// NewMachine validates the exercise list and returns an idle machine.
// onComplete, if non-nil, runs once when the session reaches COMPLETED.
func NewMachine(exercises []models.SessionExercise, onComplete func(State)) (*Machine, error) {
	if len(exercises) == 0 {
		return nil, ErrNoExercises
	}
	for i, ex := range exercises {
		if !ex.Playable() {
			return nil, fmt.Errorf("exercise %d (%s): %w", i+1, ex.Exercise.Name, ErrUnplayableExercise)
		}
	}
	list := make([]models.SessionExercise, len(exercises))
	copy(list, exercises)

	return &Machine{
		exercises:  list,
		phase:      PhaseExercise,
		status:     StatusIdle,
		elapsed:    NewTimer(CountUp),
		countdown:  NewTimer(CountDown),
		completed:  make(map[uuid.UUID]struct{}),
		onComplete: onComplete,
	}, nil
}

// Exercises returns the list being played.
func (m *Machine) Exercises() []models.SessionExercise { return m.exercises }

// Current returns the exercise at the current index.
func (m *Machine) Current() models.SessionExercise { return m.exercises[m.index] }

// Status returns the current status.
func (m *Machine) Status() Status { return m.status }

// Done reports whether the machine reached a terminal status.
func (m *Machine) Done() bool {
	return m.status == StatusCompleted || m.status == StatusExited
}

// Ticking reports whether any timer would change on the next Tick.
func (m *Machine) Ticking() bool {
	return m.elapsed.Running() || m.countdown.Running()
}

// State returns a snapshot. Completed ids are sorted for stable output.
func (m *Machine) State() State {
	ids := make([]uuid.UUID, 0, len(m.completed))
	for id := range m.completed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	return State{
		Index:     m.index,
		Total:     len(m.exercises),
		Phase:     m.phase,
		Status:    m.status,
		Remaining: m.countdown.Seconds(),
		Elapsed:   m.elapsed.Seconds(),
		Completed: ids,
	}
}

// Start moves IDLE to ACTIVE. The elapsed timer starts on the first call and
// keeps running until the session ends. Timed exercises begin their countdown;
// reps-only exercises wait for CompleteExercise.
func (m *Machine) Start() error {
	if m.status != StatusIdle {
		return fmt.Errorf("start from %s: %w", m.status, ErrInvalidTransition)
	}
	m.elapsed.Start()
	m.status = StatusActive
	m.phase = PhaseExercise
	m.countdown.Reset(0)
	if d := m.Current().EffectiveDuration(); d > 0 {
		m.countdown.Reset(d)
		m.countdown.Start()
	}
	return nil
}

// CompleteExercise marks the current exercise done. It is the manual path for
// reps-only exercises and an early finish for timed ones.
func (m *Machine) CompleteExercise() error {
	if m.status != StatusActive {
		return fmt.Errorf("complete from %s: %w", m.status, ErrInvalidTransition)
	}
	m.finishExercise()
	return nil
}

// SkipRest ends the rest period early and starts the next exercise.
func (m *Machine) SkipRest() error {
	if m.status != StatusResting {
		return fmt.Errorf("skip rest from %s: %w", m.status, ErrInvalidTransition)
	}
	m.advance(true)
	return nil
}

// SkipExercise moves past the current exercise without marking it completed
// and without a rest period. Skipping the last exercise completes the session.
// From ACTIVE the next exercise starts immediately; from IDLE it waits.
func (m *Machine) SkipExercise() error {
	if m.status != StatusIdle && m.status != StatusActive {
		return fmt.Errorf("skip from %s: %w", m.status, ErrInvalidTransition)
	}
	wasActive := m.status == StatusActive
	m.countdown.Reset(0)
	if m.isLast() {
		m.complete()
		return nil
	}
	m.advance(wasActive)
	return nil
}

// RequiresConfirmation reports whether exiting now discards progress.
func (m *Machine) RequiresConfirmation() bool {
	return m.status == StatusActive || m.status == StatusResting
}

// Exit terminates the session. Exits that discard progress need confirmed.
// Exiting a completed session is a no-op.
func (m *Machine) Exit(confirmed bool) error {
	if m.Done() {
		return nil
	}
	if m.RequiresConfirmation() && !confirmed {
		return ErrConfirmationRequired
	}
	m.elapsed.Stop()
	m.countdown.Reset(0)
	m.status = StatusExited
	return nil
}

// Tick advances both timers by one second and applies at most one phase
// transition when the countdown expires.
func (m *Machine) Tick() {
	if m.Done() {
		return
	}
	m.elapsed.Tick()
	if !m.countdown.Tick() {
		return
	}
	switch m.status {
	case StatusActive:
		m.finishExercise()
	case StatusResting:
		m.advance(true)
	}
}

func (m *Machine) isLast() bool {
	return m.index == len(m.exercises)-1
}

func (m *Machine) finishExercise() {
	m.completed[m.Current().ID] = struct{}{}
	m.countdown.Reset(0)
	if m.isLast() {
		m.complete()
		return
	}
	m.status = StatusResting
	m.phase = PhaseRest
	m.countdown.Reset(RestSeconds)
	m.countdown.Start()
}

func (m *Machine) advance(autoStart bool) {
	m.index++
	m.phase = PhaseExercise
	m.status = StatusIdle
	m.countdown.Reset(0)
	if autoStart {
		// Start cannot fail from IDLE.
		_ = m.Start()
	}
}

func (m *Machine) complete() {
	m.elapsed.Stop()
	m.countdown.Reset(0)
	m.phase = PhaseExercise
	m.status = StatusCompleted
	if m.onComplete != nil {
		m.onComplete(m.State())
	}
}
