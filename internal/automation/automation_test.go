package automation

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/provider"
	"github.com/san-kum/pathreplay/internal/storage"
	"github.com/san-kum/pathreplay/internal/trace"
)

func fixture() (*grid.Grid, trace.Trace) {
	g, _ := grid.New(3, []grid.Coord{{Row: 1, Col: 1}})
	return g, trace.Trace{
		trace.FrontierStep{Entries: []trace.Expansion{
			{From: grid.Coord{Row: 0, Col: 0}, Neighbors: []grid.Coord{{Row: 0, Col: 1}, {Row: 1, Col: 0}}},
		}},
		trace.FrontierStep{Entries: []trace.Expansion{
			{From: grid.Coord{Row: 0, Col: 1}, Neighbors: []grid.Coord{{Row: 0, Col: 2}, {Row: 1, Col: 1}}},
		}},
		trace.FinalPathStep{Path: []grid.Coord{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}, {Row: 1, Col: 2}, {Row: 2, Col: 2}}},
	}
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenario(t, `
name: compare
description: all three algorithms
steps:
  - algorithm: dijkstra
    obstacle_count: 10
  - preset: maze
    repeat: 2
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if sc.Name != "compare" || len(sc.Steps) != 2 {
		t.Fatalf("unexpected scenario %+v", sc)
	}

	alg, n, repeat, err := sc.Steps[1].resolve()
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if alg != provider.JPS || n != 160 || repeat != 2 {
		t.Errorf("preset not applied: %v %d %d", alg, n, repeat)
	}
}

func TestLoadScenarioNoSteps(t *testing.T) {
	if _, err := LoadScenario(writeScenario(t, "name: empty\n")); err == nil {
		t.Error("expected error for scenario without steps")
	}
}

func TestResolveUnknown(t *testing.T) {
	if _, _, _, err := (ScenarioStep{Preset: "nope"}).resolve(); err == nil {
		t.Error("expected unknown preset error")
	}
	if _, _, _, err := (ScenarioStep{Algorithm: "bfs"}).resolve(); !errors.Is(err, provider.ErrUnknownAlgorithm) {
		t.Errorf("expected unknown algorithm, got %v", err)
	}
}

func TestReplay(t *testing.T) {
	g, tr := fixture()
	snap, set, ticks, err := Replay(g, tr)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !snap.Done {
		t.Error("expected completed replay")
	}
	if len(ticks) != 3 {
		t.Errorf("expected 3 ticks, got %d", len(ticks))
	}
	if got := set.Values()["path_length"]; got != 3 {
		t.Errorf("expected path length 3, got %v", got)
	}
}

func TestRunScenario(t *testing.T) {
	calls := 0
	p := provider.Func(func(_ context.Context, alg provider.Algorithm, _ int) (*grid.Grid, trace.Trace, error) {
		calls++
		if alg == provider.Dijkstra {
			return nil, nil, provider.ErrEmptyMap
		}
		g, tr := fixture()
		return g, tr, nil
	})

	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	sc := &Scenario{Name: "batch", Steps: []ScenarioStep{
		{Algorithm: "astar", Repeat: 2},
		{Algorithm: "dijkstra"},
	}}
	var out bytes.Buffer
	results, err := RunScenario(context.Background(), sc, p, st, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if calls != 3 || len(results) != 3 {
		t.Fatalf("expected 3 runs, got %d calls %d results", calls, len(results))
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 stored runs, got %d", len(runs))
	}

	stats := Compare(results)
	if len(stats) != 2 {
		t.Fatalf("expected 2 algorithms, got %d", len(stats))
	}
	if stats[0].Algorithm != "astar" || stats[0].Runs != 2 || stats[0].Reachable != 2 {
		t.Errorf("unexpected astar stats %+v", stats[0])
	}
	if stats[1].Algorithm != "dijkstra" || stats[1].Empty != 1 {
		t.Errorf("unexpected dijkstra stats %+v", stats[1])
	}
}

func TestRunScenarioUnavailable(t *testing.T) {
	p := provider.Func(func(context.Context, provider.Algorithm, int) (*grid.Grid, trace.Trace, error) {
		return nil, nil, provider.ErrProviderUnavailable
	})
	sc := &Scenario{Steps: []ScenarioStep{{Algorithm: "astar"}}}
	_, err := RunScenario(context.Background(), sc, p, storage.New(t.TempDir()), &bytes.Buffer{})
	if !errors.Is(err, provider.ErrProviderUnavailable) {
		t.Errorf("expected unavailable, got %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	st := storage.New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}

	var ids []string
	for _, alg := range []string{"astar", "jps", "astar"} {
		g, tr := fixture()
		id, err := st.Save(storage.RunMetadata{Algorithm: alg}, g, tr, nil)
		if err != nil {
			t.Fatalf("save: %v", err)
		}
		ids = append(ids, id)
	}

	results, err := NewEnsemble(st, 2).Run(context.Background(), ids)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, r := range results {
		if r.RunID != ids[i] {
			t.Errorf("result %d out of order", i)
		}
		if r.Metrics["path_length"] != 3 {
			t.Errorf("result %d: expected path length 3, got %v", i, r.Metrics["path_length"])
		}
	}

	if _, err := NewEnsemble(st, 2).Run(context.Background(), []string{"missing"}); err == nil {
		t.Error("expected error for missing run")
	}
}
