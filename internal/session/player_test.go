package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

type fakeTicker struct {
	c       chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.c }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

func (f *fakeTicker) isStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
	now     time.Time
}

func (c *fakeClock) NewTicker(time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTicker{c: make(chan time.Time)}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

func (c *fakeClock) last() *fakeTicker {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tickers[len(c.tickers)-1]
}

type fakeSink struct {
	mu   sync.Mutex
	recs []models.SessionRecord
	err  error
}

func (s *fakeSink) RecordSession(_ context.Context, rec models.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return s.err
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.recs)
}

type fakeNav struct{ ch chan models.SessionSummary }

func newFakeNav() *fakeNav { return &fakeNav{ch: make(chan models.SessionSummary, 4)} }

func (n *fakeNav) ShowSummary(s models.SessionSummary) { n.ch <- s }

type harness struct {
	clock   *fakeClock
	sink    *fakeSink
	nav     *fakeNav
	changes chan State
	player  *Player
}

func newHarness(t *testing.T, exercises []models.SessionExercise) *harness {
	t.Helper()
	h := &harness{
		clock:   &fakeClock{now: time.Date(2026, 3, 1, 7, 0, 0, 0, time.UTC)},
		sink:    &fakeSink{},
		nav:     newFakeNav(),
		changes: make(chan State, 1024),
	}
	ref := models.WorkoutRef{Kind: models.KindChallengeDay, ID: uuid.New()}
	p, err := NewPlayer(ref, exercises, 70, h.sink, h.nav, Options{
		Clock:    h.clock,
		OnChange: func(st State) { h.changes <- st },
		Log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	h.player = p
	t.Cleanup(p.Close)
	return h
}

// tick delivers n ticks through the current ticker and waits for each to be
// applied.
func (h *harness) tick(t *testing.T, n int) {
	t.Helper()
	for i := range n {
		for len(h.changes) > 0 {
			<-h.changes
		}
		select {
		case h.clock.last().c <- time.Time{}:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d not received", i)
		}
		select {
		case <-h.changes:
		case <-time.After(2 * time.Second):
			t.Fatalf("tick %d not applied", i)
		}
	}
}

func (h *harness) summary(t *testing.T) models.SessionSummary {
	t.Helper()
	select {
	case s := <-h.nav.ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("summary never shown")
	}
	return models.SessionSummary{}
}

// TestPlayerFullSession plays the mixed workout through the real tick loop
// and verifies one tick source, one recorded session and one summary.
func TestPlayerFullSession(t *testing.T) {
	h := newHarness(t, scenario())
	p := h.player

	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	if err := p.Start(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Start = %v, want ErrInvalidTransition", err)
	}
	if got := h.clock.created(); got != 1 {
		t.Fatalf("tickers after double start = %d, want 1", got)
	}

	h.tick(t, 30)
	if st := p.State(); st.Status != StatusResting {
		t.Fatalf("status = %s, want resting", st.Status)
	}
	if err := p.SkipRest(); err != nil {
		t.Fatal(err)
	}
	h.tick(t, 5)
	if err := p.CompleteExercise(); err != nil {
		t.Fatal(err)
	}
	h.tick(t, RestSeconds)
	h.tick(t, 20)

	s := h.summary(t)
	if s.CompletedExercise != "3/3" || s.TotalExercises != 3 || s.CompletedCount != 3 {
		t.Errorf("summary = %+v", s)
	}
	if want := 30 + 5 + RestSeconds + 20; s.TotalTime != want {
		t.Errorf("total_time = %d, want %d", s.TotalTime, want)
	}
	if s.AvgCalorie != 5 {
		t.Errorf("avg_calorie = %d, want 5", s.AvgCalorie)
	}
	if got := h.clock.created(); got != 1 {
		t.Errorf("tickers created = %d, want 1", got)
	}
	if !h.clock.last().isStopped() {
		t.Error("ticker not stopped after completion")
	}
	if got := h.sink.count(); got != 1 {
		t.Errorf("sink calls = %d, want 1", got)
	}
	if got, ok := p.Summary(); !ok || got != s {
		t.Errorf("Summary() = %+v, %v", got, ok)
	}
	if err := p.Exit(false); err != nil {
		t.Errorf("exit after completion = %v, want nil", err)
	}
	select {
	case extra := <-h.nav.ch:
		t.Errorf("summary shown twice: %+v", extra)
	default:
	}
}

// TestPlayerSinkFailureStillShowsSummary verifies a failing sink does not
// block navigation to the summary.
func TestPlayerSinkFailureStillShowsSummary(t *testing.T) {
	h := newHarness(t, []models.SessionExercise{reps("burpees", 8, 10)})
	h.sink.err = errors.New("connection refused")

	_ = h.player.Start()
	if err := h.player.CompleteExercise(); err != nil {
		t.Fatalf("CompleteExercise: %v", err)
	}
	s := h.summary(t)
	if s.CompletedExercise != "1/1" {
		t.Errorf("completed_exercise = %q, want 1/1", s.CompletedExercise)
	}
	if h.sink.count() != 1 {
		t.Errorf("sink calls = %d, want 1", h.sink.count())
	}
	if !h.clock.last().isStopped() {
		t.Error("ticker not stopped")
	}
}

// TestPlayerRecordCarriesWorkout verifies the recorded session carries the
// workout reference and timestamps from the clock.
func TestPlayerRecordCarriesWorkout(t *testing.T) {
	h := newHarness(t, []models.SessionExercise{reps("squats", 5, 15)})
	_ = h.player.Start()
	_ = h.player.CompleteExercise()
	h.summary(t)

	h.sink.mu.Lock()
	rec := h.sink.recs[0]
	h.sink.mu.Unlock()
	if rec.ID != h.player.ID() {
		t.Errorf("record id = %s, want %s", rec.ID, h.player.ID())
	}
	if rec.Workout.Kind != models.KindChallengeDay {
		t.Errorf("workout kind = %s", rec.Workout.Kind)
	}
	if !rec.StartedAt.Equal(h.clock.now) || !rec.EndedAt.Equal(h.clock.now) {
		t.Errorf("timestamps = %s..%s", rec.StartedAt, rec.EndedAt)
	}
}

// TestPlayerExitReleasesTicker verifies a confirmed exit stops the tick source
// and never records a session.
func TestPlayerExitReleasesTicker(t *testing.T) {
	h := newHarness(t, scenario())
	_ = h.player.Start()
	h.tick(t, 3)

	if err := h.player.Exit(false); !errors.Is(err, ErrConfirmationRequired) {
		t.Fatalf("unconfirmed exit = %v", err)
	}
	if h.clock.last().isStopped() {
		t.Fatal("ticker stopped by unconfirmed exit")
	}
	if err := h.player.Exit(true); err != nil {
		t.Fatal(err)
	}
	if !h.clock.last().isStopped() {
		t.Error("ticker still running after exit")
	}
	h.player.Close()
	h.player.Close()

	if h.sink.count() != 0 {
		t.Errorf("sink calls = %d, want 0", h.sink.count())
	}
	if _, ok := h.player.Summary(); ok {
		t.Error("summary available after exit")
	}
}

// TestPlayerCloseWhileActive verifies Close tears down a running session.
func TestPlayerCloseWhileActive(t *testing.T) {
	h := newHarness(t, scenario())
	_ = h.player.Start()
	h.player.Close()
	if !h.clock.last().isStopped() {
		t.Error("ticker still running after Close")
	}
	if st := h.player.State(); st.Status != StatusExited {
		t.Errorf("status = %s, want exited", st.Status)
	}
}

// TestPlayerCloseFromTickCallback verifies Close called from OnChange on the
// tick goroutine returns instead of waiting on itself.
func TestPlayerCloseFromTickCallback(t *testing.T) {
	clock := &fakeClock{}
	var p *Player
	var armed atomic.Bool
	closed := make(chan struct{})

	p, err := NewPlayer(models.WorkoutRef{Kind: models.KindCustomWorkout, ID: uuid.New()}, scenario(), 70, nil, nil, Options{
		Clock: clock,
		OnChange: func(State) {
			if armed.CompareAndSwap(true, false) {
				p.Close()
				close(closed)
			}
		},
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(p.Close)

	if err := p.Start(); err != nil {
		t.Fatal(err)
	}
	armed.Store(true)
	select {
	case clock.last().c <- time.Time{}:
	case <-time.After(2 * time.Second):
		t.Fatal("tick not received")
	}
	select {
	case <-closed:
	case <-time.After(2 * time.Second):
		t.Fatal("Close from the tick goroutine did not return")
	}

	if st := p.State(); st.Status != StatusExited {
		t.Errorf("status = %s, want exited", st.Status)
	}
	if !clock.last().isStopped() {
		t.Error("ticker still running after Close")
	}
}

type stubSource struct {
	list []models.SessionExercise
	err  error
}

func (s stubSource) SessionExercises(context.Context, models.WorkoutRef) ([]models.SessionExercise, error) {
	return s.list, s.err
}

type stubWeight struct {
	kg  float64
	ok  bool
	err error
}

func (s stubWeight) BodyWeight(context.Context) (float64, bool, error) { return s.kg, s.ok, s.err }

// TestLoadWeightFallback verifies the default weight is used when the user
// has none recorded or the lookup fails.
func TestLoadWeightFallback(t *testing.T) {
	tests := []struct {
		name    string
		weights WeightSource
		want    float64
	}{
		{"recorded", stubWeight{kg: 82.5, ok: true}, 82.5},
		{"not recorded", stubWeight{}, models.DefaultWeightKg},
		{"lookup failed", stubWeight{err: errors.New("timeout")}, models.DefaultWeightKg},
		{"no source", nil, models.DefaultWeightKg},
		{"zero recorded", stubWeight{kg: 0, ok: true}, models.DefaultWeightKg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Load(context.Background(), models.WorkoutRef{}, stubSource{list: scenario()}, tt.weights, nil, nil,
				Options{Clock: &fakeClock{}, Log: slog.New(slog.NewTextHandler(io.Discard, nil))})
			if err != nil {
				t.Fatal(err)
			}
			defer p.Close()
			if p.WeightKg() != tt.want {
				t.Errorf("weight = %v, want %v", p.WeightKg(), tt.want)
			}
		})
	}
}

// TestLoadErrors verifies provider failures and empty lists never start a session.
func TestLoadErrors(t *testing.T) {
	cause := errors.New("503 service unavailable")
	_, err := Load(context.Background(), models.WorkoutRef{}, stubSource{err: cause}, nil, nil, nil, Options{Clock: &fakeClock{}})
	if !errors.Is(err, ErrLoadFailed) || !errors.Is(err, cause) {
		t.Errorf("provider failure err = %v", err)
	}

	_, err = Load(context.Background(), models.WorkoutRef{}, stubSource{}, nil, nil, nil, Options{Clock: &fakeClock{}})
	if !errors.Is(err, ErrNoExercises) {
		t.Errorf("empty list err = %v, want ErrNoExercises", err)
	}
}
