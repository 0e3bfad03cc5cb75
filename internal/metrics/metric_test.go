package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/replay"
	"github.com/san-kum/pathreplay/internal/trace"
)

func runTrace(t *testing.T, obs ...replay.Observer) {
	t.Helper()
	g, err := grid.New(4, nil)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	tr := trace.Trace{
		trace.FrontierStep{Entries: []trace.Expansion{
			{From: grid.Coord{Row: 0, Col: 0}, Neighbors: []grid.Coord{{Row: 0, Col: 1}, {Row: 1, Col: 0}}},
		}},
		trace.FrontierStep{Entries: []trace.Expansion{
			{From: grid.Coord{Row: 0, Col: 1}, Neighbors: []grid.Coord{{Row: 0, Col: 2}, {Row: 1, Col: 1}}},
			{From: grid.Coord{Row: 1, Col: 0}, Neighbors: []grid.Coord{{Row: 2, Col: 0}}},
		}},
		trace.FinalPathStep{Path: []grid.Coord{
			{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 1, Col: 1}, {Row: 2, Col: 1},
			{Row: 2, Col: 2}, {Row: 3, Col: 2}, {Row: 3, Col: 3},
		}},
	}

	e := replay.New()
	for _, o := range obs {
		e.AddObserver(o)
	}
	if err := e.Load(g, tr); err != nil {
		t.Fatalf("load: %v", err)
	}
	for {
		s, err := e.AdvanceOne()
		if err != nil {
			t.Fatalf("advance: %v", err)
		}
		if s.Done {
			return
		}
	}
}

func TestDefaultSet(t *testing.T) {
	set := DefaultSet()
	runTrace(t, set)

	vals := set.Values()
	want := map[string]float64{
		// step 2 demotes both frontier cells of step 1
		"visited":       2,
		"frontier_peak": 3,
		"blocked":       0,
		"path_length":   5,
		"ticks":         3,
	}
	for name, v := range want {
		if vals[name] != v {
			t.Errorf("%s: expected %v, got %v", name, v, vals[name])
		}
	}
}

func TestSetReset(t *testing.T) {
	set := DefaultSet()
	runTrace(t, set)
	set.Reset()

	for name, v := range set.Values() {
		if v != 0 {
			t.Errorf("%s: expected 0 after reset, got %v", name, v)
		}
	}
}

func TestFrontierPeakIgnoresNilGrid(t *testing.T) {
	m := NewFrontierPeak()
	m.Observe(replay.Snapshot{})
	if m.Value() != 0 {
		t.Errorf("expected 0, got %v", m.Value())
	}
}

func TestExporter(t *testing.T) {
	ticks := testutil.ToFloat64(replayTicksTotal)
	completed := testutil.ToFloat64(replayCompletedTotal)

	runTrace(t, Exporter{})

	if got := testutil.ToFloat64(replayTicksTotal) - ticks; got != 3 {
		t.Errorf("expected 3 ticks, got %v", got)
	}
	if got := testutil.ToFloat64(replayCompletedTotal) - completed; got != 1 {
		t.Errorf("expected 1 completed replay, got %v", got)
	}
}

func TestObserveProviderRequest(t *testing.T) {
	c := providerRequestsTotal.WithLabelValues("astar", "ok")
	before := testutil.ToFloat64(c)

	ObserveProviderRequest("astar", "ok", 30*time.Millisecond)
	ObserveProviderRequest("astar", "unavailable", time.Second)

	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("expected 1 ok request, got %v", got)
	}
}

func TestSessionGauge(t *testing.T) {
	before := testutil.ToFloat64(bridgeSessionsActive)
	SessionOpened()
	SessionOpened()
	SessionClosed()
	if got := testutil.ToFloat64(bridgeSessionsActive) - before; got != 1 {
		t.Errorf("expected 1 active session, got %v", got)
	}
}
