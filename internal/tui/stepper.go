package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/pathreplay/internal/replay"
)

// Stepper drives an engine from line commands: an empty line or "n"
// advances one step, "p" plays to the end, "r" resets and "q" quits.
type Stepper struct {
	engine   *replay.Engine
	renderer *LiveRenderer
	pacing   replay.Pacing
	in       io.Reader
	out      io.Writer
}

func NewStepper(e *replay.Engine, r *LiveRenderer, p replay.Pacing, in io.Reader, out io.Writer) *Stepper {
	return &Stepper{engine: e, renderer: r, pacing: p, in: in, out: out}
}

// Run reads commands until quit, end of input or ctx is done.
func (s *Stepper) Run(ctx context.Context) error {
	s.renderer.Draw(s.engine.Snapshot())

	scanner := bufio.NewScanner(s.in)
	for {
		fmt.Fprint(s.out, "  [enter] next  [p] play  [r] reset  [q] quit > ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "", "n":
			snap, err := s.engine.AdvanceOne()
			if err != nil {
				return err
			}
			s.renderer.Draw(snap)
		case "p":
			if _, err := Play(ctx, s.engine, s.renderer, s.pacing); err != nil && !errors.Is(err, ErrInterrupted) {
				return err
			}
		case "r":
			s.engine.Reset()
			s.renderer.Draw(s.engine.Snapshot())
		case "q":
			return nil
		default:
			fmt.Fprintln(s.out, "  unknown command")
		}
	}
}

// ErrInterrupted is returned by Play when ctx ends the replay early.
var ErrInterrupted = errors.New("tui: replay interrupted")

// Play runs the engine to the end and renders the published ticks, rate
// limited by the renderer except for the final one.
func Play(ctx context.Context, e *replay.Engine, r *LiveRenderer, p replay.Pacing) (replay.Snapshot, error) {
	r.Start()
	defer r.Stop()

	ch, err := e.PlayToEnd(ctx, p)
	if err != nil {
		return replay.Snapshot{}, err
	}
	var last replay.Snapshot
	for snap := range ch {
		r.OnTick(snap)
		last = snap
	}
	if err := e.Err(); err != nil {
		return last, err
	}
	if !last.Done {
		return last, ErrInterrupted
	}
	return last, nil
}
