// Package workout edits the exercise list of a custom workout.
package workout

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/claude/fitplay/internal/models"
)

var (
	ErrIndexOutOfRange = errors.New("exercise index out of range")
	ErrInvalidValue    = errors.New("value must be positive")
	ErrEmptyWorkout    = errors.New("workout must keep at least one exercise")
	ErrUnknownOp       = errors.New("unknown edit op")
)

// Op is one edit to a workout's exercise list.
type Op interface {
	Name() string
	apply(list []models.SessionExercise) ([]models.SessionExercise, error)
}

// SetReps overrides the repetition count of the exercise at Index.
type SetReps struct {
	Index int
	Value int
}

// SetDuration overrides the duration in seconds of the exercise at Index.
type SetDuration struct {
	Index int
	Value int
}

// Remove drops the exercise at Index.
type Remove struct {
	Index int
}

// Move relocates the exercise at From so it ends up at To.
type Move struct {
	From int
	To   int
}

func (SetReps) Name() string     { return "set_reps" }
func (SetDuration) Name() string { return "set_duration" }
func (Remove) Name() string      { return "remove" }
func (Move) Name() string        { return "move" }

func (o SetReps) apply(list []models.SessionExercise) ([]models.SessionExercise, error) {
	if err := checkIndex(list, o.Index); err != nil {
		return nil, err
	}
	if o.Value <= 0 {
		return nil, fmt.Errorf("reps %d: %w", o.Value, ErrInvalidValue)
	}
	v := o.Value
	list[o.Index].Reps = &v
	return list, nil
}

func (o SetDuration) apply(list []models.SessionExercise) ([]models.SessionExercise, error) {
	if err := checkIndex(list, o.Index); err != nil {
		return nil, err
	}
	if o.Value <= 0 {
		return nil, fmt.Errorf("duration %d: %w", o.Value, ErrInvalidValue)
	}
	v := o.Value
	list[o.Index].DurationSec = &v
	return list, nil
}

func (o Remove) apply(list []models.SessionExercise) ([]models.SessionExercise, error) {
	if err := checkIndex(list, o.Index); err != nil {
		return nil, err
	}
	if len(list) == 1 {
		return nil, ErrEmptyWorkout
	}
	return append(list[:o.Index], list[o.Index+1:]...), nil
}

func (o Move) apply(list []models.SessionExercise) ([]models.SessionExercise, error) {
	if err := checkIndex(list, o.From); err != nil {
		return nil, err
	}
	if err := checkIndex(list, o.To); err != nil {
		return nil, err
	}
	ex := list[o.From]
	list = append(list[:o.From], list[o.From+1:]...)
	list = append(list[:o.To], append([]models.SessionExercise{ex}, list[o.To:]...)...)
	return list, nil
}

func checkIndex(list []models.SessionExercise, i int) error {
	if i < 0 || i >= len(list) {
		return fmt.Errorf("index %d of %d: %w", i, len(list), ErrIndexOutOfRange)
	}
	return nil
}

// Apply runs ops in order against a copy of list and renumbers positions
// from 1. The input is never modified; on error nothing is returned.
func Apply(list []models.SessionExercise, ops ...Op) ([]models.SessionExercise, error) {
	out := make([]models.SessionExercise, len(list))
	copy(out, list)

	for i, op := range ops {
		var err error
		out, err = op.apply(out)
		if err != nil {
			return nil, fmt.Errorf("op %d (%s): %w", i, op.Name(), err)
		}
	}
	for i := range out {
		out[i].Position = i + 1
	}
	return out, nil
}

// wireOp is the JSON form of an Op, e.g. {"op":"set_reps","index":0,"value":12}.
type wireOp struct {
	Op    string `json:"op"`
	Index int    `json:"index"`
	Value int    `json:"value"`
	From  int    `json:"from"`
	To    int    `json:"to"`
}

// Decode parses a single JSON edit op.
func Decode(data []byte) (Op, error) {
	var w wireOp
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decoding edit op: %w", err)
	}
	return w.toOp()
}

// DecodeAll parses a JSON array of edit ops.
func DecodeAll(data []byte) ([]Op, error) {
	var ws []wireOp
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, fmt.Errorf("decoding edit ops: %w", err)
	}
	ops := make([]Op, 0, len(ws))
	for i, w := range ws {
		op, err := w.toOp()
		if err != nil {
			return nil, fmt.Errorf("op %d: %w", i, err)
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (w wireOp) toOp() (Op, error) {
	switch w.Op {
	case "set_reps":
		return SetReps{Index: w.Index, Value: w.Value}, nil
	case "set_duration":
		return SetDuration{Index: w.Index, Value: w.Value}, nil
	case "remove":
		return Remove{Index: w.Index}, nil
	case "move":
		return Move{From: w.From, To: w.To}, nil
	default:
		return nil, fmt.Errorf("%q: %w", w.Op, ErrUnknownOp)
	}
}
