package replay

import (
	"fmt"
	"time"

	"github.com/san-kum/pathreplay/internal/grid"
)

type State int

const (
	Idle State = iota
	Ready
	Stepping
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Ready:
		return "ready"
	case Stepping:
		return "stepping"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Cursor is the replay position. VisitedCount never decreases between two
// loads of the same trace.
type Cursor struct {
	StepIndex    int
	VisitedCount int
}

// Snapshot is what a presentation layer receives per tick. Grid is a private
// copy.
type Snapshot struct {
	Grid         *grid.Grid
	VisitedCount int
	StepIndex    int
	Done         bool
}

// Pacing sets the delay before each published tick of a play. Step applies
// to frontier steps and PathCell to each drawn cell of the final path. Zero
// means no delay.
type Pacing struct {
	Step     time.Duration
	PathCell time.Duration
}

func (p Pacing) normalize() Pacing {
	if p.Step < 0 {
		p.Step = 0
	}
	if p.PathCell < 0 {
		p.PathCell = 0
	}
	return p
}

type Observer interface {
	OnTick(s Snapshot)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Snapshot)

func (f ObserverFunc) OnTick(s Snapshot) { f(s) }
