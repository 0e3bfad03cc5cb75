package replay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/trace"
)

type Engine struct {
	mu sync.Mutex

	grid    *grid.Grid
	initial *grid.Grid
	trace   trace.Trace
	cursor  Cursor
	state   State

	// cells of the final path already drawn by a play
	pathDrawn int

	playing bool
	cancel  context.CancelFunc
	done    chan struct{}
	playErr error

	observers []Observer
	logger    *slog.Logger
}

type Option func(*Engine)

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithObserver(o Observer) Option {
	return func(e *Engine) { e.observers = append(e.observers, o) }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		state:     Idle,
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "replay"))
	return e
}

func (e *Engine) AddObserver(o Observer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.observers = append(e.observers, o)
}

// Load replaces the grid and trace and rewinds the cursor. A running play is
// stopped first. The engine keeps its own copy of g.
func (e *Engine) Load(g *grid.Grid, t trace.Trace) error {
	if g == nil {
		return ErrNoGrid
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := t.CheckBounds(g.Size()); err != nil {
		return err
	}

	e.lockStopped()
	defer e.mu.Unlock()

	e.initial = g.Clone()
	e.grid = g.Clone()
	e.trace = t
	e.cursor = Cursor{}
	e.pathDrawn = 0
	e.playErr = nil
	e.updateStateLocked()

	e.logger.Debug("trace loaded",
		slog.Int("size", g.Size()),
		slog.Int("steps", len(t)),
		slog.Bool("final_path", t.HasFinalPath()),
		slog.String("state", e.state.String()))
	return nil
}

// Reset rewinds to the grid captured at load time, keeping the same trace.
func (e *Engine) Reset() {
	e.lockStopped()
	defer e.mu.Unlock()

	if e.initial == nil {
		return
	}
	e.grid = e.initial.Clone()
	e.cursor = Cursor{}
	e.pathDrawn = 0
	e.playErr = nil
	e.updateStateLocked()
}

// AdvanceOne applies the step at the cursor. On a Completed engine it
// returns the current snapshot with Done set.
func (e *Engine) AdvanceOne() (Snapshot, error) {
	e.mu.Lock()
	if e.playing {
		e.mu.Unlock()
		return Snapshot{}, ErrPlayInProgress
	}
	if e.state == Idle {
		e.mu.Unlock()
		return Snapshot{}, ErrNoTraceLoaded
	}
	if e.state == Completed {
		snap := e.snapshotLocked()
		e.mu.Unlock()
		return snap, nil
	}

	tr, err := e.nextLocked(true)
	if err != nil {
		e.mu.Unlock()
		return Snapshot{}, err
	}
	e.commitLocked(tr)
	snap := e.snapshotLocked()
	obs := e.observers
	e.mu.Unlock()

	notify(obs, snap)
	return snap, nil
}

// PlayToEnd starts publishing one snapshot per tick on the returned channel,
// which is closed when the trace completes, ctx is cancelled, Stop is called
// or a step fails (see Err). The play flag is released before the channel
// closes. On a Completed engine a single Done snapshot is published.
func (e *Engine) PlayToEnd(ctx context.Context, p Pacing) (<-chan Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.playing {
		return nil, ErrAlreadyPlaying
	}
	if e.state == Idle {
		return nil, ErrNoTraceLoaded
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan Snapshot)
	done := make(chan struct{})
	e.playing, e.cancel, e.done, e.playErr = true, cancel, done, nil

	go e.play(ctx, cancel, p.normalize(), out, done)
	return out, nil
}

func (e *Engine) play(ctx context.Context, cancel context.CancelFunc, p Pacing, out chan<- Snapshot, done chan<- struct{}) {
	ticks := 0
	defer func() {
		e.mu.Lock()
		e.playing, e.cancel, e.done = false, nil, nil
		e.mu.Unlock()
		cancel()
		close(out)
		close(done)
		e.logger.Debug("play finished", slog.Int("ticks", ticks))
	}()

	for {
		e.mu.Lock()
		var (
			tr  transition
			err error
		)
		if e.state == Completed {
			tr = transition{grid: e.grid, cursor: e.cursor, pathDrawn: e.pathDrawn}
		} else {
			tr, err = e.nextLocked(false)
		}
		if err != nil {
			e.playErr = err
			idx := e.cursor.StepIndex
			e.mu.Unlock()
			e.logger.Error("play step failed", slog.Int("step", idx), slog.Any("error", err))
			return
		}
		snap := e.snapshotOf(tr)
		e.mu.Unlock()

		select {
		case out <- snap:
		case <-ctx.Done():
			return
		}

		e.mu.Lock()
		e.commitLocked(tr)
		delay := e.delayLocked(p)
		obs := e.observers
		e.mu.Unlock()

		ticks++
		notify(obs, snap)
		if snap.Done {
			return
		}

		if delay <= 0 {
			if ctx.Err() != nil {
				return
			}
			continue
		}
		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// Stop cancels a running play and waits until its flag is released.
func (e *Engine) Stop() {
	e.lockStopped()
	e.mu.Unlock()
}

// lockStopped acquires the lock with no play in flight.
func (e *Engine) lockStopped() {
	for {
		e.mu.Lock()
		if !e.playing {
			return
		}
		cancel, done := e.cancel, e.done
		e.mu.Unlock()
		cancel()
		<-done
	}
}

// nextLocked computes the next transition without committing it. With whole
// set a final path step is drawn in one go; otherwise one cell at a time.
func (e *Engine) nextLocked(whole bool) (transition, error) {
	idx := e.cursor.StepIndex
	next := transition{grid: e.grid.Clone(), cursor: e.cursor}

	switch s := e.trace[idx].(type) {
	case trace.FinalPathStep:
		drawn, err := drawPath(next.grid, s.Path, e.pathDrawn, whole)
		if err != nil {
			return transition{}, fmt.Errorf("step %d: %w", idx, err)
		}
		if drawn < len(s.Path) {
			next.pathDrawn = drawn
			return next, nil
		}
	case trace.FrontierStep:
		n, err := applyFrontier(next.grid, s)
		if err != nil {
			return transition{}, fmt.Errorf("step %d: %w", idx, err)
		}
		next.cursor.VisitedCount += n
	default:
		return transition{}, fmt.Errorf("step %d: unknown step type %T", idx, s)
	}

	next.cursor.StepIndex++
	return next, nil
}

func (e *Engine) commitLocked(tr transition) {
	e.grid = tr.grid
	e.cursor = tr.cursor
	e.pathDrawn = tr.pathDrawn
	e.updateStateLocked()
}

func (e *Engine) updateStateLocked() {
	e.state = stateOf(len(e.trace), e.cursor.StepIndex, e.pathDrawn)
}

func stateOf(steps, idx, pathDrawn int) State {
	switch {
	case steps == 0:
		return Idle
	case idx >= steps:
		return Completed
	case idx == 0 && pathDrawn == 0:
		return Ready
	}
	return Stepping
}

// delayLocked picks the pause before the next tick from the kind of step it
// will apply.
func (e *Engine) delayLocked(p Pacing) time.Duration {
	if e.state == Completed {
		return 0
	}
	if _, ok := e.trace[e.cursor.StepIndex].(trace.FinalPathStep); ok {
		return p.PathCell
	}
	return p.Step
}

func (e *Engine) snapshotOf(tr transition) Snapshot {
	var g *grid.Grid
	if tr.grid != nil {
		g = tr.grid.Clone()
	}
	return Snapshot{
		Grid:         g,
		VisitedCount: tr.cursor.VisitedCount,
		StepIndex:    tr.cursor.StepIndex,
		Done:         stateOf(len(e.trace), tr.cursor.StepIndex, tr.pathDrawn) == Completed,
	}
}

func (e *Engine) snapshotLocked() Snapshot {
	return e.snapshotOf(transition{grid: e.grid, cursor: e.cursor, pathDrawn: e.pathDrawn})
}

// Snapshot returns a copy of the current state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Playing() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playing
}

func (e *Engine) Cursor() Cursor {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// Len returns the number of steps in the loaded trace.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.trace)
}

// Trace returns the loaded trace. Callers must not modify it.
func (e *Engine) Trace() trace.Trace {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.trace
}

// Err returns the step failure that ended the last play, if any.
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.playErr
}

func notify(obs []Observer, s Snapshot) {
	for _, o := range obs {
		o.OnTick(s)
	}
}
