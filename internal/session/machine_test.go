package session

import (
	"errors"
	"testing"

	"github.com/claude/fitplay/internal/models"
)

// TestScenarioTimedRepsTimed walks the documented three-exercise session:
// timed auto-advance into rest, skipped rest, manual reps completion, a full
// rest, and a final timed exercise that completes the session.
func TestScenarioTimedRepsTimed(t *testing.T) {
	exercises := scenario()
	var completions int
	var final State
	m, err := NewMachine(exercises, func(st State) {
		completions++
		final = st
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if st := m.State(); st.Remaining != 30 || st.Status != StatusActive {
		t.Fatalf("after start: status=%s remaining=%d, want active/30", st.Status, st.Remaining)
	}

	tickN(m, 30)
	st := m.State()
	if st.Status != StatusResting || st.Phase != PhaseRest {
		t.Fatalf("after 30s: status=%s phase=%s, want resting/rest", st.Status, st.Phase)
	}
	if st.Remaining != RestSeconds {
		t.Errorf("rest remaining = %d, want %d", st.Remaining, RestSeconds)
	}
	if len(st.Completed) != 1 || st.Completed[0] != exercises[0].ID {
		t.Errorf("completed = %v, want [%s]", st.Completed, exercises[0].ID)
	}

	if err := m.SkipRest(); err != nil {
		t.Fatalf("SkipRest: %v", err)
	}
	st = m.State()
	if st.Index != 1 || st.Status != StatusActive {
		t.Fatalf("after skip rest: index=%d status=%s, want 1/active", st.Index, st.Status)
	}

	// Reps-only exercise waits for the user no matter how long.
	tickN(m, 500)
	if st := m.State(); st.Status != StatusActive || st.Index != 1 {
		t.Fatalf("reps exercise advanced on its own: index=%d status=%s", st.Index, st.Status)
	}

	if err := m.CompleteExercise(); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	if st := m.State(); st.Status != StatusResting || st.Remaining != RestSeconds {
		t.Fatalf("after reps: status=%s remaining=%d", st.Status, st.Remaining)
	}

	tickN(m, RestSeconds)
	st = m.State()
	if st.Index != 2 || st.Status != StatusActive || st.Remaining != 20 {
		t.Fatalf("after rest: index=%d status=%s remaining=%d, want 2/active/20", st.Index, st.Status, st.Remaining)
	}

	tickN(m, 20)
	if m.Status() != StatusCompleted {
		t.Fatalf("status = %s, want completed", m.Status())
	}
	if completions != 1 {
		t.Errorf("completions = %d, want 1", completions)
	}
	if want := 30 + 500 + RestSeconds + 20; final.Elapsed != want {
		t.Errorf("elapsed = %d, want %d", final.Elapsed, want)
	}

	summary := BuildSummary(exercises, final, 70)
	if summary.CompletedExercise != "3/3" {
		t.Errorf("completed_exercise = %q, want 3/3", summary.CompletedExercise)
	}
	if summary.AvgCalorie != 5 {
		t.Errorf("avg_calorie = %d, want 5", summary.AvgCalorie)
	}
}

// TestNoRestAfterFinalExercise verifies the last exercise goes straight to
// COMPLETED and the elapsed timer stops.
func TestNoRestAfterFinalExercise(t *testing.T) {
	m, err := NewMachine([]models.SessionExercise{timed("plank", 3, 5)}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = m.Start()
	tickN(m, 5)

	st := m.State()
	if st.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", st.Status)
	}
	if st.Phase != PhaseExercise || st.Remaining != 0 {
		t.Errorf("phase=%s remaining=%d, want exercise/0", st.Phase, st.Remaining)
	}
	if m.Ticking() {
		t.Error("timers still running after completion")
	}
	tickN(m, 10)
	if got := m.State().Elapsed; got != 5 {
		t.Errorf("elapsed after completion = %d, want 5", got)
	}
}

// TestRestIsAlwaysFixed verifies every rest period starts at RestSeconds
// regardless of the preceding exercise.
func TestRestIsAlwaysFixed(t *testing.T) {
	m, err := NewMachine([]models.SessionExercise{
		timed("a", 1, 3),
		reps("b", 1, 5),
		timed("c", 1, 200),
		timed("d", 1, 1),
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	_ = m.Start()

	tickN(m, 3)
	if got := m.State().Remaining; got != RestSeconds {
		t.Errorf("rest after timed = %d, want %d", got, RestSeconds)
	}
	_ = m.SkipRest()
	_ = m.CompleteExercise()
	if got := m.State().Remaining; got != RestSeconds {
		t.Errorf("rest after reps = %d, want %d", got, RestSeconds)
	}
	_ = m.SkipRest()
	tickN(m, 200)
	if got := m.State().Remaining; got != RestSeconds {
		t.Errorf("rest after long timed = %d, want %d", got, RestSeconds)
	}
}

// TestCompletionFiresOncePerSession verifies exactly one completion for lists
// of every length when each exercise is completed in order.
func TestCompletionFiresOncePerSession(t *testing.T) {
	for n := 1; n <= 5; n++ {
		var list []models.SessionExercise
		for range n {
			list = append(list, reps("r", 2, 8))
		}
		var calls int
		m, err := NewMachine(list, func(State) { calls++ })
		if err != nil {
			t.Fatal(err)
		}
		_ = m.Start()
		for i := range n {
			if err := m.CompleteExercise(); err != nil {
				t.Fatalf("n=%d complete %d: %v", n, i, err)
			}
			if i < n-1 {
				_ = m.SkipRest()
			}
		}
		_ = m.CompleteExercise()
		_ = m.Exit(true)
		if calls != 1 {
			t.Errorf("n=%d: completion calls = %d, want 1", n, calls)
		}
		if got := len(m.State().Completed); got != n {
			t.Errorf("n=%d: completed = %d", n, got)
		}
	}
}

// TestSkipDoesNotMarkCompleted verifies skipped exercises stay out of the
// completed set and that skipping the final exercise completes the session.
func TestSkipDoesNotMarkCompleted(t *testing.T) {
	var final State
	m, err := NewMachine([]models.SessionExercise{timed("a", 1, 30), timed("b", 1, 30)}, func(st State) { final = st })
	if err != nil {
		t.Fatal(err)
	}

	if err := m.SkipExercise(); err != nil {
		t.Fatalf("skip from idle: %v", err)
	}
	st := m.State()
	if st.Index != 1 || st.Status != StatusIdle {
		t.Errorf("after idle skip: index=%d status=%s, want 1/idle", st.Index, st.Status)
	}

	_ = m.Start()
	if err := m.SkipExercise(); err != nil {
		t.Fatalf("skip last: %v", err)
	}
	if m.Status() != StatusCompleted {
		t.Fatalf("status = %s, want completed", m.Status())
	}
	if len(final.Completed) != 0 {
		t.Errorf("completed = %v, want none", final.Completed)
	}
	if got := BuildSummary(m.Exercises(), final, 70).CompletedExercise; got != "0/2" {
		t.Errorf("completed_exercise = %q, want 0/2", got)
	}
}

// TestExitConfirmation verifies exits from ACTIVE and RESTING need
// confirmation while exits from IDLE do not.
func TestExitConfirmation(t *testing.T) {
	m, _ := NewMachine(scenario(), nil)
	if m.RequiresConfirmation() {
		t.Error("idle session should not require confirmation")
	}

	_ = m.Start()
	if err := m.Exit(false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("exit from active = %v, want ErrConfirmationRequired", err)
	}
	if m.Status() != StatusActive {
		t.Fatalf("unconfirmed exit changed status to %s", m.Status())
	}

	tickN(m, 30)
	if err := m.Exit(false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("exit from resting = %v, want ErrConfirmationRequired", err)
	}
	if err := m.Exit(true); err != nil {
		t.Fatalf("confirmed exit: %v", err)
	}
	if m.Status() != StatusExited || m.Ticking() {
		t.Errorf("status=%s ticking=%v, want exited/false", m.Status(), m.Ticking())
	}

	idle, _ := NewMachine(scenario(), nil)
	if err := idle.Exit(false); err != nil {
		t.Errorf("exit from idle: %v", err)
	}
}

// TestInvalidTransitions verifies actions outside their source state are rejected.
func TestInvalidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		setup func(*Machine)
		act   func(*Machine) error
	}{
		{"complete from idle", func(*Machine) {}, (*Machine).CompleteExercise},
		{"skip rest from idle", func(*Machine) {}, (*Machine).SkipRest},
		{"start from active", func(m *Machine) { _ = m.Start() }, (*Machine).Start},
		{"skip rest from active", func(m *Machine) { _ = m.Start() }, (*Machine).SkipRest},
		{"complete from resting", func(m *Machine) { _ = m.Start(); tickN(m, 30) }, (*Machine).CompleteExercise},
		{"skip from resting", func(m *Machine) { _ = m.Start(); tickN(m, 30) }, (*Machine).SkipExercise},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMachine(scenario(), nil)
			if err != nil {
				t.Fatal(err)
			}
			tt.setup(m)
			if err := tt.act(m); !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("err = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

// TestNewMachineRejectsBadInput verifies empty and unplayable lists never start.
func TestNewMachineRejectsBadInput(t *testing.T) {
	if _, err := NewMachine(nil, nil); !errors.Is(err, ErrNoExercises) {
		t.Errorf("empty list err = %v, want ErrNoExercises", err)
	}

	bad := reps("broken", 1, 0)
	bad.Exercise.Reps = nil
	if _, err := NewMachine([]models.SessionExercise{timed("ok", 1, 10), bad}, nil); !errors.Is(err, ErrUnplayableExercise) {
		t.Errorf("unplayable err = %v, want ErrUnplayableExercise", err)
	}
}

// TestCompletedSetHasNoDuplicates verifies the same binding id completed
// twice is counted once.
func TestCompletedSetHasNoDuplicates(t *testing.T) {
	a := reps("a", 1, 5)
	b := a
	m, _ := NewMachine([]models.SessionExercise{a, b}, nil)
	_ = m.Start()
	_ = m.CompleteExercise()
	_ = m.SkipRest()
	_ = m.CompleteExercise()
	if got := len(m.State().Completed); got != 1 {
		t.Errorf("completed = %d, want 1", got)
	}
}
