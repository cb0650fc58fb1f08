package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

// ErrLoadFailed wraps failures of the exercise list provider.
var ErrLoadFailed = errors.New("failed to load exercises")

// ExerciseSource returns the ordered exercise list for a workout.
type ExerciseSource interface {
	SessionExercises(ctx context.Context, ref models.WorkoutRef) ([]models.SessionExercise, error)
}

// WeightSource returns the current user's body weight. ok is false when the
// user has none recorded.
type WeightSource interface {
	BodyWeight(ctx context.Context) (kg float64, ok bool, err error)
}

// Sink records completed sessions.
type Sink interface {
	RecordSession(ctx context.Context, rec models.SessionRecord) error
}

// Navigator presents the summary once a session completes. ShowSummary may
// run on the tick goroutine.
type Navigator interface {
	ShowSummary(models.SessionSummary)
}

// Options configures a Player. Zero values pick defaults.
type Options struct {
	Clock           Clock
	DefaultWeightKg float64
	SinkTimeout     time.Duration
	// OnChange runs after every transition, outside the player's lock. It
	// is called from the tick goroutine for timer-driven changes.
	OnChange func(State)
	Log      *slog.Logger
}

// Player runs one session: it serializes access to the Machine, owns the
// single per-second tick source, and hands the summary to the sink and the
// navigator when the session completes.
type Player struct {
	mu        sync.Mutex
	id        uuid.UUID
	ref       models.WorkoutRef
	m         *Machine
	weightKg  float64
	startedAt time.Time

	clock  Clock
	ticker Ticker
	quit   chan struct{}
	wg     sync.WaitGroup
	onTick atomic.Bool

	summary  *models.SessionSummary
	finished bool
	pending  *models.SessionRecord

	sink        Sink
	nav         Navigator
	onChange    func(State)
	sinkTimeout time.Duration
	log         *slog.Logger
}

// Load fetches the exercise list and body weight, then builds a Player.
// Provider failures surface as ErrLoadFailed; a missing or unreadable weight
// falls back to the configured default.
func Load(ctx context.Context, ref models.WorkoutRef, src ExerciseSource, weights WeightSource, sink Sink, nav Navigator, opts Options) (*Player, error) {
	opts = opts.withDefaults()

	exercises, err := src.SessionExercises(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	weight := opts.DefaultWeightKg
	if weights != nil {
		kg, ok, err := weights.BodyWeight(ctx)
		switch {
		case err != nil:
			opts.Log.Warn("body weight unavailable, using default", "error", err, "default_kg", weight)
		case ok && kg > 0:
			weight = kg
		}
	}

	return NewPlayer(ref, exercises, weight, sink, nav, opts)
}

// NewPlayer builds a Player over an already-fetched exercise list.
func NewPlayer(ref models.WorkoutRef, exercises []models.SessionExercise, weightKg float64, sink Sink, nav Navigator, opts Options) (*Player, error) {
	opts = opts.withDefaults()
	if weightKg <= 0 {
		weightKg = opts.DefaultWeightKg
	}

	p := &Player{
		id:          uuid.New(),
		ref:         ref,
		weightKg:    weightKg,
		clock:       opts.Clock,
		sink:        sink,
		nav:         nav,
		onChange:    opts.OnChange,
		sinkTimeout: opts.SinkTimeout,
		log:         opts.Log,
	}
	m, err := NewMachine(exercises, p.completed)
	if err != nil {
		return nil, err
	}
	p.m = m
	return p, nil
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	if o.DefaultWeightKg <= 0 {
		o.DefaultWeightKg = models.DefaultWeightKg
	}
	if o.SinkTimeout <= 0 {
		o.SinkTimeout = 10 * time.Second
	}
	if o.Log == nil {
		o.Log = slog.Default()
	}
	return o
}

// ID returns the session id used when recording the session.
func (p *Player) ID() uuid.UUID { return p.id }

// WeightKg returns the body weight used for the calorie estimate.
func (p *Player) WeightKg() float64 { return p.weightKg }

// Exercises returns the list being played.
func (p *Player) Exercises() []models.SessionExercise {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m.Exercises()
}

// State returns a snapshot of the session.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m.State()
}

// Summary returns the summary once the session has completed.
func (p *Player) Summary() (models.SessionSummary, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.summary == nil {
		return models.SessionSummary{}, false
	}
	return *p.summary, true
}

// RequiresConfirmation reports whether Exit needs confirmed=true.
func (p *Player) RequiresConfirmation() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.m.RequiresConfirmation()
}

func (p *Player) Start() error {
	return p.apply(func(m *Machine) error {
		if p.startedAt.IsZero() {
			p.startedAt = p.clock.Now()
		}
		return m.Start()
	})
}

func (p *Player) CompleteExercise() error { return p.apply((*Machine).CompleteExercise) }
func (p *Player) SkipRest() error         { return p.apply((*Machine).SkipRest) }
func (p *Player) SkipExercise() error     { return p.apply((*Machine).SkipExercise) }

// Exit terminates the session and releases the tick source.
func (p *Player) Exit(confirmed bool) error {
	return p.apply(func(m *Machine) error { return m.Exit(confirmed) })
}

// Close releases the tick source regardless of session state and waits for
// the tick goroutine to return. Called from an OnChange or Navigator
// callback running on the tick goroutine, it does not wait; the goroutine
// returns once the callback does. It is safe to call more than once.
func (p *Player) Close() {
	p.mu.Lock()
	if !p.m.Done() {
		_ = p.m.Exit(true)
	}
	p.stopTicking()
	p.mu.Unlock()
	if p.onTick.Load() {
		return
	}
	p.wg.Wait()
}

// apply runs fn under the lock, reconciles the tick source with the machine,
// then notifies and finishes outside the lock.
func (p *Player) apply(fn func(*Machine) error) error {
	p.mu.Lock()
	err := fn(p.m)
	p.syncTicker()
	st := p.m.State()
	rec := p.pending
	p.pending = nil
	p.mu.Unlock()

	if err != nil {
		return err
	}
	if p.onChange != nil {
		p.onChange(st)
	}
	if rec != nil {
		p.finish(*rec)
	}
	return nil
}

// completed is the machine's completion hook; it runs with p.mu held.
func (p *Player) completed(st State) {
	if p.finished {
		return
	}
	p.finished = true

	summary := BuildSummary(p.m.Exercises(), st, p.weightKg)
	p.summary = &summary
	start := p.startedAt
	if start.IsZero() {
		start = p.clock.Now()
	}
	p.pending = &models.SessionRecord{
		ID:        p.id,
		Workout:   p.ref,
		StartedAt: start,
		EndedAt:   p.clock.Now(),
		Summary:   summary,
	}
}

// finish records the session best-effort, then shows the summary.
func (p *Player) finish(rec models.SessionRecord) {
	if p.sink != nil {
		ctx, cancel := context.WithTimeout(context.Background(), p.sinkTimeout)
		err := p.sink.RecordSession(ctx, rec)
		cancel()
		if err != nil {
			p.log.Error("failed to record session", "session_id", rec.ID, "error", err)
		} else {
			p.log.Info("session recorded", "session_id", rec.ID,
				"completed", rec.Summary.CompletedExercise, "total_time", rec.Summary.TotalTime)
		}
	}
	if p.nav != nil {
		p.nav.ShowSummary(rec.Summary)
	}
}

func (p *Player) syncTicker() {
	if p.m.Ticking() {
		p.startTicking()
	} else {
		p.stopTicking()
	}
}

func (p *Player) startTicking() {
	if p.ticker != nil {
		return
	}
	t := p.clock.NewTicker(time.Second)
	quit := make(chan struct{})
	p.ticker = t
	p.quit = quit

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		for {
			select {
			case <-quit:
				return
			case <-t.C():
				p.onTick.Store(true)
				_ = p.apply(func(m *Machine) error {
					// a tick that raced a stop is dropped
					if p.ticker == t {
						m.Tick()
					}
					return nil
				})
				p.onTick.Store(false)
			}
		}
	}()
}

func (p *Player) stopTicking() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	close(p.quit)
	p.ticker = nil
	p.quit = nil
}
