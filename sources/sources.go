// Package sources produces exposure readings for the feed command.
package sources

import (
	"fmt"
	"math/rand"
	"strings"
)

// NoValue is reported by a source that has nothing to report for a
// sample.
const NoValue = -1

// MaxValue is the largest reading.
const MaxValue = 100

// Source is one labelled signal.
type Source interface {
	Label() string
	// Read returns the next reading in [0,MaxValue], or NoValue.
	Read() (int, error)
}

// RandomWalk is a synthetic source that wanders within [0,MaxValue] and
// occasionally drops out.
type RandomWalk struct {
	label   string
	rng     *rand.Rand
	value   int
	step    int
	dropout float64
}

var _ Source = (*RandomWalk)(nil)

// NewRandomWalk returns a walk starting at start that moves by at most
// step per read and reports NoValue with probability dropout.
func NewRandomWalk(label string, seed int64, start, step int, dropout float64) (*RandomWalk, error) {
	if label == "" {
		return nil, fmt.Errorf("random walk: empty label")
	}
	if start < 0 || start > MaxValue {
		return nil, fmt.Errorf("random walk %q: start %d outside [0,%d]", label, start, MaxValue)
	}
	if step < 0 {
		return nil, fmt.Errorf("random walk %q: negative step %d", label, step)
	}
	if dropout < 0 || dropout >= 1 {
		return nil, fmt.Errorf("random walk %q: dropout %v outside [0,1)", label, dropout)
	}
	return &RandomWalk{
		label:   label,
		rng:     rand.New(rand.NewSource(seed)),
		value:   start,
		step:    step,
		dropout: dropout,
	}, nil
}

func (w *RandomWalk) Label() string {
	return w.label
}

func (w *RandomWalk) Read() (int, error) {
	if w.rng.Float64() < w.dropout {
		return NoValue, nil
	}
	w.value += w.rng.Intn(2*w.step+1) - w.step
	w.value = max(0, min(w.value, MaxValue))
	return w.value, nil
}

// Sequence replays fixed readings, then reports NoValue.
type Sequence struct {
	label  string
	values []int
	next   int
}

var _ Source = (*Sequence)(nil)

func NewSequence(label string, values ...int) *Sequence {
	return &Sequence{label: label, values: values}
}

func (s *Sequence) Label() string {
	return s.label
}

func (s *Sequence) Read() (int, error) {
	if s.next >= len(s.values) {
		return NoValue, nil
	}
	v := s.values[s.next]
	s.next++
	if v < NoValue || v > MaxValue {
		return NoValue, fmt.Errorf("sequence %q: value %d out of range", s.label, v)
	}
	return v, nil
}

// FromLabels builds one random walk per comma-separated label. Each walk
// gets its own seed derived from seed so the set is reproducible.
func FromLabels(labels string, seed int64, dropout float64) ([]Source, error) {
	var out []Source
	for i, label := range strings.Split(labels, ",") {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		rng := rand.New(rand.NewSource(seed + int64(i)))
		w, err := NewRandomWalk(label, seed+int64(i), 20+rng.Intn(60), 8, dropout)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no labels in %q", labels)
	}
	return out, nil
}
