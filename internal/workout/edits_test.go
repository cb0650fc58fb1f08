package workout

import (
	"errors"
	"testing"

	"github.com/claude/fitplay/internal/models"
	"github.com/google/uuid"
)

func list(names ...string) []models.SessionExercise {
	out := make([]models.SessionExercise, len(names))
	for i, n := range names {
		reps := 10
		out[i] = models.SessionExercise{
			ID:       uuid.New(),
			Position: i + 1,
			Exercise: models.Exercise{ID: uuid.New(), Name: n, Reps: &reps},
		}
	}
	return out
}

func names(l []models.SessionExercise) []string {
	out := make([]string, len(l))
	for i, ex := range l {
		out[i] = ex.Exercise.Name
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// TestApplyMove verifies reordering in both directions and position renumbering.
func TestApplyMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"forward", 0, 2, []string{"b", "c", "a", "d"}},
		{"backward", 3, 1, []string{"a", "d", "b", "c"}},
		{"same place", 2, 2, []string{"a", "b", "c", "d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(list("a", "b", "c", "d"), Move{From: tt.from, To: tt.to})
			if err != nil {
				t.Fatal(err)
			}
			if !equal(names(got), tt.want) {
				t.Errorf("order = %v, want %v", names(got), tt.want)
			}
			for i, ex := range got {
				if ex.Position != i+1 {
					t.Errorf("position[%d] = %d", i, ex.Position)
				}
			}
		})
	}
}

// TestApplyOverrides verifies reps and duration overrides land on the binding,
// not on the shared exercise.
func TestApplyOverrides(t *testing.T) {
	in := list("squat", "plank")
	got, err := Apply(in, SetReps{Index: 0, Value: 15}, SetDuration{Index: 1, Value: 45})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].EffectiveReps() != 15 {
		t.Errorf("reps = %d, want 15", got[0].EffectiveReps())
	}
	if got[1].EffectiveDuration() != 45 {
		t.Errorf("duration = %d, want 45", got[1].EffectiveDuration())
	}
	if *got[0].Exercise.Reps != 10 {
		t.Errorf("exercise default changed to %d", *got[0].Exercise.Reps)
	}
	if in[0].Reps != nil {
		t.Error("input list was modified")
	}
}

// TestApplyRejectsInvalid verifies bad indices and values fail the whole batch.
func TestApplyRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		ops  []Op
		want error
	}{
		{"negative index", []Op{SetReps{Index: -1, Value: 3}}, ErrIndexOutOfRange},
		{"index past end", []Op{Remove{Index: 3}}, ErrIndexOutOfRange},
		{"zero reps", []Op{SetReps{Index: 0, Value: 0}}, ErrInvalidValue},
		{"negative duration", []Op{SetDuration{Index: 0, Value: -30}}, ErrInvalidValue},
		{"move past end", []Op{Move{From: 0, To: 5}}, ErrIndexOutOfRange},
		{"later op fails", []Op{Remove{Index: 0}, Remove{Index: 2}}, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(list("a", "b", "c"), tt.ops...)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if got != nil {
				t.Errorf("got partial result %v", names(got))
			}
		})
	}
}

// TestRemoveKeepsOneExercise verifies a workout cannot be emptied.
func TestRemoveKeepsOneExercise(t *testing.T) {
	got, err := Apply(list("a", "b"), Remove{Index: 0})
	if err != nil {
		t.Fatal(err)
	}
	if !equal(names(got), []string{"b"}) || got[0].Position != 1 {
		t.Errorf("got %v pos %d", names(got), got[0].Position)
	}
	if _, err := Apply(got, Remove{Index: 0}); !errors.Is(err, ErrEmptyWorkout) {
		t.Errorf("err = %v, want ErrEmptyWorkout", err)
	}
}

// TestDecode verifies the JSON forms of each op.
func TestDecode(t *testing.T) {
	tests := []struct {
		in   string
		want Op
	}{
		{`{"op":"set_reps","index":0,"value":12}`, SetReps{Index: 0, Value: 12}},
		{`{"op":"set_duration","index":2,"value":40}`, SetDuration{Index: 2, Value: 40}},
		{`{"op":"remove","index":1}`, Remove{Index: 1}},
		{`{"op":"move","from":3,"to":0}`, Move{From: 3, To: 0}},
	}
	for _, tt := range tests {
		got, err := Decode([]byte(tt.in))
		if err != nil {
			t.Errorf("Decode(%s): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Decode(%s) = %#v, want %#v", tt.in, got, tt.want)
		}
	}

	if _, err := Decode([]byte(`{"op":"rename","index":0}`)); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("unknown op err = %v", err)
	}
	if _, err := Decode([]byte(`not json`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

// TestDecodeAll verifies a batch decodes in order and a bad entry fails it.
func TestDecodeAll(t *testing.T) {
	ops, err := DecodeAll([]byte(`[{"op":"remove","index":0},{"op":"set_reps","index":0,"value":5}]`))
	if err != nil {
		t.Fatal(err)
	}
	if len(ops) != 2 || ops[0].Name() != "remove" || ops[1].Name() != "set_reps" {
		t.Errorf("ops = %#v", ops)
	}
	if _, err := DecodeAll([]byte(`[{"op":"remove"},{"op":"swap"}]`)); !errors.Is(err, ErrUnknownOp) {
		t.Errorf("err = %v, want ErrUnknownOp", err)
	}
}
