package metrics

import (
	"sync"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/replay"
)

// Metric reduces the snapshots of one replay to a number.
type Metric interface {
	Name() string
	Observe(s replay.Snapshot)
	Value() float64
	Reset()
}

type Visited struct {
	count int
}

func NewVisited() *Visited { return &Visited{} }

func (v *Visited) Name() string { return "visited" }

func (v *Visited) Observe(s replay.Snapshot) { v.count = s.VisitedCount }

func (v *Visited) Value() float64 { return float64(v.count) }

func (v *Visited) Reset() { v.count = 0 }

// FrontierPeak is the largest frontier seen on any tick.
type FrontierPeak struct {
	peak int
}

func NewFrontierPeak() *FrontierPeak { return &FrontierPeak{} }

func (f *FrontierPeak) Name() string { return "frontier_peak" }

func (f *FrontierPeak) Observe(s replay.Snapshot) {
	if s.Grid == nil {
		return
	}
	if n := s.Grid.CountByStatus(grid.Frontier); n > f.peak {
		f.peak = n
	}
}

func (f *FrontierPeak) Value() float64 { return float64(f.peak) }

func (f *FrontierPeak) Reset() { f.peak = 0 }

// statusCount reports how many cells hold a status on the latest tick.
type statusCount struct {
	name   string
	status grid.Status
	count  int
}

func NewBlocked() Metric { return &statusCount{name: "blocked", status: grid.Blocked} }

func NewPathLength() Metric { return &statusCount{name: "path_length", status: grid.Path} }

func (c *statusCount) Name() string { return c.name }

func (c *statusCount) Observe(s replay.Snapshot) {
	if s.Grid != nil {
		c.count = s.Grid.CountByStatus(c.status)
	}
}

func (c *statusCount) Value() float64 { return float64(c.count) }

func (c *statusCount) Reset() { c.count = 0 }

type Ticks struct {
	n int
}

func NewTicks() *Ticks { return &Ticks{} }

func (t *Ticks) Name() string { return "ticks" }

func (t *Ticks) Observe(replay.Snapshot) { t.n++ }

func (t *Ticks) Value() float64 { return float64(t.n) }

func (t *Ticks) Reset() { t.n = 0 }

// Set feeds every tick of an engine to its metrics. It is safe to read
// while a play is publishing.
type Set struct {
	mu      sync.Mutex
	metrics []Metric
}

func NewSet(ms ...Metric) *Set {
	return &Set{metrics: ms}
}

// DefaultSet holds the metrics recorded with every stored run.
func DefaultSet() *Set {
	return NewSet(NewVisited(), NewFrontierPeak(), NewBlocked(), NewPathLength(), NewTicks())
}

func (s *Set) OnTick(snap replay.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Observe(snap)
	}
}

func (s *Set) Values() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.metrics))
	for _, m := range s.metrics {
		out[m.Name()] = m.Value()
	}
	return out
}

func (s *Set) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.metrics {
		m.Reset()
	}
}
