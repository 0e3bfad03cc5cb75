// Package trace holds the ordered record of a path search that the replay
// engine animates.
package trace

import (
	"fmt"

	"github.com/san-kum/pathreplay/internal/grid"
)

// Step is either a [FrontierStep] or a [FinalPathStep].
type Step interface {
	isStep()
}

// Expansion records the neighbors discovered from one visited cell.
type Expansion struct {
	From      grid.Coord
	Neighbors []grid.Coord
}

// FrontierStep is applied by the engine as one atomic batch. Entry order
// mirrors computation order only.
type FrontierStep struct {
	Entries []Expansion
}

// FinalPathStep lists the path from Start to End.
type FinalPathStep struct {
	Path []grid.Coord
}

func (FrontierStep) isStep()  {}
func (FinalPathStep) isStep() {}

type Trace []Step

func (t Trace) Len() int { return len(t) }

// HasFinalPath reports whether the trace ends in a FinalPathStep.
func (t Trace) HasFinalPath() bool {
	if len(t) == 0 {
		return false
	}
	_, ok := t[len(t)-1].(FinalPathStep)
	return ok
}

// FinalPath returns the terminal path, or nil for an unreachable target.
func (t Trace) FinalPath() []grid.Coord {
	if !t.HasFinalPath() {
		return nil
	}
	return t[len(t)-1].(FinalPathStep).Path
}

// IsTerminal reports whether stepIndex is past the last step.
func IsTerminal(t Trace, stepIndex int) bool {
	return stepIndex >= len(t)
}

// WithShortestPath appends path as the terminal step when t has none.
// Providers that report the path beside the step records use this to fold it
// into the trace.
func WithShortestPath(t Trace, path []grid.Coord) Trace {
	if len(path) == 0 || t.HasFinalPath() {
		return t
	}
	out := make(Trace, len(t), len(t)+1)
	copy(out, t)
	p := make([]grid.Coord, len(path))
	copy(p, path)
	return append(out, FinalPathStep{Path: p})
}

// Validate checks that at most one FinalPathStep exists and that it is last.
func (t Trace) Validate() error {
	for i, s := range t {
		if _, ok := s.(FinalPathStep); ok && i != len(t)-1 {
			return &StepError{Index: i, Wrapped: ErrMalformed}
		}
	}
	return nil
}

// CheckBounds reports the first coordinate outside a size×size grid.
func (t Trace) CheckBounds(size int) error {
	in := func(c grid.Coord) bool {
		return c.Row >= 0 && c.Row < size && c.Col >= 0 && c.Col < size
	}
	for i, s := range t {
		var coords []grid.Coord
		switch s := s.(type) {
		case FrontierStep:
			for _, e := range s.Entries {
				coords = append(coords, e.From)
				coords = append(coords, e.Neighbors...)
			}
		case FinalPathStep:
			coords = s.Path
		}
		for _, c := range coords {
			if !in(c) {
				return fmt.Errorf("step %d: %w: %s on %dx%d grid", i, grid.ErrOutOfBounds, c, size, size)
			}
		}
	}
	return nil
}
