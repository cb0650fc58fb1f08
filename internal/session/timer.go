package session

// Direction selects whether a Timer counts elapsed or remaining seconds.
type Direction int

const (
	CountUp Direction = iota
	CountDown
)

// Timer is a one-second-resolution counter advanced by Tick. It does not own
// a clock; the Player feeds every timer from a single tick source so both
// counters move on the same cadence.
type Timer struct {
	dir     Direction
	seconds int
	running bool
}

// NewTimer returns a stopped timer at zero.
func NewTimer(dir Direction) *Timer {
	return &Timer{dir: dir}
}

// Start resumes counting. Calling Start on a running timer is a no-op.
func (t *Timer) Start() {
	t.running = true
}

// Stop halts counting. Safe on a stopped timer.
func (t *Timer) Stop() {
	t.running = false
}

// Reset stops the timer and sets its value.
func (t *Timer) Reset(seconds int) {
	t.running = false
	t.seconds = max(seconds, 0)
}

// Running reports whether Tick will change the value.
func (t *Timer) Running() bool { return t.running }

// Seconds is the elapsed time for CountUp and the remaining time for CountDown.
func (t *Timer) Seconds() int { return t.seconds }

// Tick advances the timer by one second. For a countdown it returns true on
// the tick that reaches zero and stops itself, so expiry fires once.
func (t *Timer) Tick() bool {
	if !t.running {
		return false
	}
	if t.dir == CountUp {
		t.seconds++
		return false
	}
	if t.seconds > 0 {
		t.seconds--
	}
	if t.seconds == 0 {
		t.running = false
		return true
	}
	return false
}
