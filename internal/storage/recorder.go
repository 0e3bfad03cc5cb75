package storage

import (
	"strconv"
	"sync"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/replay"
)

var tickHeader = []string{"step", "visited", "frontier", "blocked", "path"}

// TickRecord is one published snapshot reduced to counts.
type TickRecord struct {
	Step     int
	Visited  int
	Frontier int
	Blocked  int
	Path     int
}

func (t TickRecord) row() []string {
	return []string{
		strconv.Itoa(t.Step),
		strconv.Itoa(t.Visited),
		strconv.Itoa(t.Frontier),
		strconv.Itoa(t.Blocked),
		strconv.Itoa(t.Path),
	}
}

func NewTickRecord(s replay.Snapshot) TickRecord {
	tk := TickRecord{Step: s.StepIndex, Visited: s.VisitedCount}
	if s.Grid != nil {
		counts := s.Grid.Counts()
		tk.Frontier = counts[grid.Frontier]
		tk.Blocked = counts[grid.Blocked]
		tk.Path = counts[grid.Path]
	}
	return tk
}

// Recorder collects a TickRecord per engine tick.
type Recorder struct {
	mu    sync.Mutex
	ticks []TickRecord
}

func NewRecorder() *Recorder {
	return &Recorder{ticks: make([]TickRecord, 0, 64)}
}

func (r *Recorder) OnTick(s replay.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = append(r.ticks, NewTickRecord(s))
}

func (r *Recorder) Ticks() []TickRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TickRecord, len(r.ticks))
	copy(out, r.ticks)
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ticks = r.ticks[:0]
}
