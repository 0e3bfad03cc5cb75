package replay_test

import (
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/replay"
	"github.com/san-kum/pathreplay/internal/trace"
)

const scenarioTrace = `[
	{"0,0": [[0,1],[1,0]]},
	{"0,1": [[0,2]], "1,0": [[2,0]]},
	{"finalPath": [[0,0],[0,1],[0,2],[0,3],[0,4],[1,4],[2,4],[3,4],[4,4]]}
]`

// sweepTrace revisits cells across steps and bumps into the obstacle at 1,1
// from two directions.
const sweepTrace = `[
	{"0,0": [[0,1],[1,0]]},
	{"0,1": [[0,2],[1,1]], "1,0": [[2,0],[1,1]]},
	{"0,2": [[0,3],[1,2]], "2,0": [[3,0],[2,1]], "0,1": [[1,1]]},
	{"1,2": [[1,1],[2,2]], "2,1": [[1,1],[2,2]]},
	{"finalPath": [[0,0],[0,1],[1,1],[1,2],[2,2],[3,2],[3,3]]}
]`

func mustParse(s string) trace.Trace {
	var raw []json.RawMessage
	Expect(json.Unmarshal([]byte(s), &raw)).To(Succeed())
	t, err := trace.Parse(raw)
	Expect(err).NotTo(HaveOccurred())
	return t
}

func mustGrid(size int, obstacles ...grid.Coord) *grid.Grid {
	g, err := grid.New(size, obstacles)
	Expect(err).NotTo(HaveOccurred())
	return g
}

func statusAt(g *grid.Grid, r, c int) grid.Status {
	s, err := g.Status(grid.Coord{Row: r, Col: c})
	Expect(err).NotTo(HaveOccurred())
	return s
}

func stepAll(e *replay.Engine) []replay.Snapshot {
	var snaps []replay.Snapshot
	for {
		snap, err := e.AdvanceOne()
		Expect(err).NotTo(HaveOccurred())
		snaps = append(snaps, snap)
		if snap.Done {
			return snaps
		}
	}
}

func drain(ch <-chan replay.Snapshot) []replay.Snapshot {
	var snaps []replay.Snapshot
	for s := range ch {
		snaps = append(snaps, s)
	}
	return snaps
}

var _ = Describe("Engine", func() {
	var e *replay.Engine

	BeforeEach(func() {
		e = replay.New()
	})

	Context("when idle", func() {
		It("rejects stepping and playing", func() {
			Expect(e.State()).To(Equal(replay.Idle))

			_, err := e.AdvanceOne()
			Expect(err).To(MatchError(replay.ErrNoTraceLoaded))

			_, err = e.PlayToEnd(context.Background(), replay.Pacing{})
			Expect(err).To(MatchError(replay.ErrNoTraceLoaded))
		})

		It("stays idle for an empty trace but keeps the grid", func() {
			Expect(e.Load(mustGrid(4), nil)).To(Succeed())
			Expect(e.State()).To(Equal(replay.Idle))
			Expect(e.Snapshot().Grid.Size()).To(Equal(4))
		})

		It("rejects a nil grid", func() {
			Expect(e.Load(nil, nil)).To(MatchError(replay.ErrNoGrid))
		})

		It("rejects a trace that leaves the grid", func() {
			t := mustParse(`[{"0,0": [[0,5]]}]`)
			Expect(e.Load(mustGrid(5), t)).To(MatchError(grid.ErrOutOfBounds))
		})
	})

	Context("with the 5x5 scenario", func() {
		BeforeEach(func() {
			Expect(e.Load(mustGrid(5, grid.Coord{Row: 2, Col: 2}), mustParse(scenarioTrace))).To(Succeed())
		})

		It("starts ready at the origin", func() {
			Expect(e.State()).To(Equal(replay.Ready))
			Expect(e.Cursor()).To(Equal(replay.Cursor{}))
		})

		It("settles the first frontier on the second step", func() {
			first, err := e.AdvanceOne()
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Done).To(BeFalse())
			Expect(first.VisitedCount).To(Equal(0))
			Expect(e.State()).To(Equal(replay.Stepping))

			snap, err := e.AdvanceOne()
			Expect(err).NotTo(HaveOccurred())

			g := snap.Grid
			Expect(statusAt(g, 0, 0)).To(Equal(grid.Start))
			Expect(statusAt(g, 0, 1)).To(Equal(grid.Visited))
			Expect(statusAt(g, 1, 0)).To(Equal(grid.Visited))
			Expect(statusAt(g, 0, 2)).To(Equal(grid.Frontier))
			Expect(statusAt(g, 2, 0)).To(Equal(grid.Frontier))
			Expect(snap.VisitedCount).To(Equal(2))
			Expect(snap.StepIndex).To(Equal(2))
		})

		It("draws the path on the third step and completes", func() {
			_, _ = e.AdvanceOne()
			_, _ = e.AdvanceOne()
			snap, err := e.AdvanceOne()
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Done).To(BeTrue())
			Expect(e.State()).To(Equal(replay.Completed))

			for _, rc := range [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}, {1, 4}, {2, 4}, {3, 4}} {
				Expect(statusAt(snap.Grid, rc[0], rc[1])).To(Equal(grid.Path), "%d,%d", rc[0], rc[1])
			}
			Expect(statusAt(snap.Grid, 0, 0)).To(Equal(grid.Start))
			Expect(statusAt(snap.Grid, 4, 4)).To(Equal(grid.End))
			Expect(statusAt(snap.Grid, 2, 2)).To(Equal(grid.Obstacle))
			Expect(snap.VisitedCount).To(Equal(2))
		})

		It("returns the same snapshot once completed", func() {
			last := stepAll(e)[2]
			again, err := e.AdvanceOne()
			Expect(err).NotTo(HaveOccurred())
			Expect(again.Done).To(BeTrue())
			Expect(again.Grid.Equal(last.Grid)).To(BeTrue())
			Expect(again.StepIndex).To(Equal(3))
		})

		It("hands out snapshots that do not alias the engine grid", func() {
			snap, _ := e.AdvanceOne()
			Expect(snap.Grid.SetStatus(grid.Coord{Row: 3, Col: 3}, grid.Path)).To(Succeed())
			Expect(statusAt(e.Snapshot().Grid, 3, 3)).To(Equal(grid.Empty))
		})
	})

	Context("with an unreachable target", func() {
		It("completes without drawing a path", func() {
			t := mustParse(`[{"0,0": [[0,1]]}, {"0,1": [[1,1]]}]`)
			Expect(e.Load(mustGrid(3, grid.Coord{Row: 1, Col: 2}, grid.Coord{Row: 2, Col: 1}), t)).To(Succeed())

			snaps := stepAll(e)
			Expect(snaps).To(HaveLen(2))
			Expect(snaps[1].Done).To(BeTrue())
			Expect(e.State()).To(Equal(replay.Completed))
			for _, s := range snaps {
				Expect(s.Grid.CountByStatus(grid.Path)).To(BeZero())
			}
		})
	})

	Context("across a longer sweep", func() {
		var g *grid.Grid

		BeforeEach(func() {
			g = mustGrid(4, grid.Coord{Row: 1, Col: 1})
			Expect(e.Load(g, mustParse(sweepTrace))).To(Succeed())
		})

		It("keeps exactly one start and one end", func() {
			for _, s := range stepAll(e) {
				Expect(s.Grid.CountByStatus(grid.Start)).To(Equal(1))
				Expect(s.Grid.CountByStatus(grid.End)).To(Equal(1))
			}
		})

		It("counts each visited cell once and never decreases", func() {
			snaps := stepAll(e)
			prev := 0
			for _, s := range snaps {
				Expect(s.VisitedCount).To(BeNumerically(">=", prev))
				prev = s.VisitedCount
			}

			// every frontier cell but 2,2 settles by the fourth step
			Expect(snaps[3].VisitedCount).To(Equal(8))
			Expect(snaps[3].Grid.CountByStatus(grid.Visited)).To(Equal(8))
			Expect(snaps[3].Grid.CountByStatus(grid.Frontier)).To(Equal(1))
			Expect(snaps[len(snaps)-1].VisitedCount).To(Equal(8))
		})

		It("promotes an obstacle to blocked once and never reverses it", func() {
			snaps := stepAll(e)
			for _, s := range snaps[1:] {
				Expect(statusAt(s.Grid, 1, 1)).To(Equal(grid.Blocked))
				Expect(s.Grid.CountByStatus(grid.Blocked)).To(Equal(1))
			}
		})

		It("never draws the path over an obstacle", func() {
			snaps := stepAll(e)
			last := snaps[len(snaps)-1].Grid
			Expect(statusAt(last, 1, 1)).To(Equal(grid.Blocked))
			Expect(statusAt(last, 1, 2)).To(Equal(grid.Path))
			Expect(statusAt(last, 3, 3)).To(Equal(grid.End))
		})

		It("reproduces the same sequence after reset", func() {
			first := stepAll(e)
			e.Reset()
			Expect(e.State()).To(Equal(replay.Ready))
			Expect(e.Cursor()).To(Equal(replay.Cursor{}))

			second := stepAll(e)
			Expect(second).To(HaveLen(len(first)))
			for i := range first {
				Expect(second[i].Grid.Equal(first[i].Grid)).To(BeTrue(), "step %d", i)
				Expect(second[i].VisitedCount).To(Equal(first[i].VisitedCount))
			}
		})

		It("ends a zero-paced play on the same grid as manual stepping", func() {
			manual := stepAll(e)
			e.Reset()

			ch, err := e.PlayToEnd(context.Background(), replay.Pacing{})
			Expect(err).NotTo(HaveOccurred())
			played := drain(ch)

			Expect(played).NotTo(BeEmpty())
			last := played[len(played)-1]
			Expect(last.Done).To(BeTrue())
			Expect(last.Grid.Equal(manual[len(manual)-1].Grid)).To(BeTrue())
			Expect(last.VisitedCount).To(Equal(manual[len(manual)-1].VisitedCount))
			Expect(e.Playing()).To(BeFalse())
			Expect(e.Err()).NotTo(HaveOccurred())
		})

		It("draws the final path one cell per tick during a play", func() {
			ch, err := e.PlayToEnd(context.Background(), replay.Pacing{})
			Expect(err).NotTo(HaveOccurred())
			played := drain(ch)

			// four frontier ticks, then 0,1 1,2 2,2 3,2 one at a time
			Expect(played).To(HaveLen(8))
			for i, s := range played[4:] {
				Expect(s.Grid.CountByStatus(grid.Path)).To(Equal(i + 1))
				Expect(s.Done).To(Equal(i == 3))
			}
		})
	})

	Context("while playing", func() {
		BeforeEach(func() {
			Expect(e.Load(mustGrid(4, grid.Coord{Row: 1, Col: 1}), mustParse(sweepTrace))).To(Succeed())
		})

		It("rejects a second play and manual steps", func() {
			ch, err := e.PlayToEnd(context.Background(), replay.Pacing{Step: time.Hour})
			Expect(err).NotTo(HaveOccurred())
			Eventually(ch).Should(Receive())

			_, err = e.PlayToEnd(context.Background(), replay.Pacing{})
			Expect(err).To(MatchError(replay.ErrAlreadyPlaying))

			_, err = e.AdvanceOne()
			Expect(err).To(MatchError(replay.ErrPlayInProgress))

			e.Stop()
			Expect(e.Playing()).To(BeFalse())
			Eventually(ch).Should(BeClosed())

			snap, err := e.AdvanceOne()
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.StepIndex).To(Equal(2))
		})

		It("stops on context cancellation without rolling back", func() {
			ctx, cancel := context.WithCancel(context.Background())
			ch, err := e.PlayToEnd(ctx, replay.Pacing{Step: time.Hour})
			Expect(err).NotTo(HaveOccurred())

			var first replay.Snapshot
			Eventually(ch).Should(Receive(&first))
			cancel()
			Eventually(ch).Should(BeClosed())

			Expect(e.Playing()).To(BeFalse())
			Expect(e.Cursor().StepIndex).To(Equal(first.StepIndex))
			Expect(e.Snapshot().Grid.Equal(first.Grid)).To(BeTrue())
		})

		It("stops the play when a new trace is loaded", func() {
			ch, err := e.PlayToEnd(context.Background(), replay.Pacing{Step: time.Hour})
			Expect(err).NotTo(HaveOccurred())
			Eventually(ch).Should(Receive())

			Expect(e.Load(mustGrid(5, grid.Coord{Row: 2, Col: 2}), mustParse(scenarioTrace))).To(Succeed())
			Eventually(ch).Should(BeClosed())
			Expect(e.State()).To(Equal(replay.Ready))
			Expect(e.Snapshot().Grid.Size()).To(Equal(5))
		})

		It("finishes a cancelled final path on the next manual step", func() {
			ch, err := e.PlayToEnd(context.Background(), replay.Pacing{})
			Expect(err).NotTo(HaveOccurred())

			// four frontier ticks and the first path cell; the second cell
			// is never received so it must not be committed
			for i := 0; i < 5; i++ {
				Eventually(ch).Should(Receive())
			}
			e.Stop()
			Eventually(ch).Should(BeClosed())
			Expect(e.State()).To(Equal(replay.Stepping))
			Expect(e.Snapshot().Grid.CountByStatus(grid.Path)).To(Equal(1))

			snap, err := e.AdvanceOne()
			Expect(err).NotTo(HaveOccurred())
			Expect(snap.Done).To(BeTrue())
			Expect(snap.Grid.CountByStatus(grid.Path)).To(Equal(4))
		})

		It("publishes a single done tick on a completed engine", func() {
			stepAll(e)
			ch, err := e.PlayToEnd(context.Background(), replay.Pacing{})
			Expect(err).NotTo(HaveOccurred())
			played := drain(ch)
			Expect(played).To(HaveLen(1))
			Expect(played[0].Done).To(BeTrue())
		})
	})

	Context("with observers", func() {
		It("notifies every published tick", func() {
			var seen []int
			e = replay.New(replay.WithObserver(replay.ObserverFunc(func(s replay.Snapshot) {
				seen = append(seen, s.StepIndex)
			})))
			Expect(e.Load(mustGrid(5, grid.Coord{Row: 2, Col: 2}), mustParse(scenarioTrace))).To(Succeed())

			stepAll(e)
			Expect(seen).To(Equal([]int{1, 2, 3}))
		})
	})
})
