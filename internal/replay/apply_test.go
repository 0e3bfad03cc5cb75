package replay

import (
	"errors"
	"testing"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/trace"
)

func c(r, col int) grid.Coord { return grid.Coord{Row: r, Col: col} }

func TestApplyFrontierCommutative(t *testing.T) {
	entries := []trace.Expansion{
		{From: c(0, 1), Neighbors: []grid.Coord{c(0, 2), c(1, 1)}},
		{From: c(0, 2), Neighbors: []grid.Coord{c(1, 2), c(0, 1)}},
		{From: c(1, 0), Neighbors: []grid.Coord{c(1, 1), c(2, 0)}},
	}
	reversed := []trace.Expansion{entries[2], entries[1], entries[0]}

	base, _ := grid.New(3, []grid.Coord{c(1, 1)})
	_ = base.SetStatus(c(0, 1), grid.Frontier)

	a, b := base.Clone(), base.Clone()
	na, err := applyFrontier(a, trace.FrontierStep{Entries: entries})
	if err != nil {
		t.Fatal(err)
	}
	nb, err := applyFrontier(b, trace.FrontierStep{Entries: reversed})
	if err != nil {
		t.Fatal(err)
	}

	if !a.Equal(b) {
		t.Errorf("entry order changed the result:\n%s\nvs\n%s", a, b)
	}
	if na != nb {
		t.Errorf("entry order changed the visited count: %d vs %d", na, nb)
	}
	if na != 3 {
		t.Errorf("expected 3 visited, got %d", na)
	}
}

func TestApplyFrontierSkipsFixedCells(t *testing.T) {
	g, _ := grid.New(3, []grid.Coord{c(1, 1)})
	n, err := applyFrontier(g, trace.FrontierStep{Entries: []trace.Expansion{
		{From: c(0, 0)},
		{From: c(2, 2)},
		{From: c(1, 1)},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("expected no visits, got %d", n)
	}
	want := "S..\n.#.\n..E\n"
	if g.String() != want {
		t.Errorf("expected\n%s\ngot\n%s", want, g)
	}
}

func TestApplyFrontierOutOfBounds(t *testing.T) {
	g, _ := grid.New(2, nil)
	_, err := applyFrontier(g, trace.FrontierStep{Entries: []trace.Expansion{
		{From: c(0, 0), Neighbors: []grid.Coord{c(0, 2)}},
	}})
	if !errors.Is(err, grid.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestDrawPath(t *testing.T) {
	g, _ := grid.New(3, []grid.Coord{c(1, 1)})
	path := []grid.Coord{c(0, 0), c(0, 1), c(1, 1), c(1, 2), c(2, 2)}

	tests := []struct {
		name  string
		whole bool
		want  int
		paint int
	}{
		{"one cell", false, 3, 1},
		{"whole path", true, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gg := g.Clone()
			got, err := drawPath(gg, path, 0, tt.whole)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("expected next index %d, got %d", tt.want, got)
			}
			if n := gg.CountByStatus(grid.Path); n != tt.paint {
				t.Errorf("expected %d path cells, got %d", tt.paint, n)
			}
		})
	}
}

func TestStateOf(t *testing.T) {
	tests := []struct {
		steps, idx, drawn int
		want              State
	}{
		{0, 0, 0, Idle},
		{3, 0, 0, Ready},
		{1, 0, 2, Stepping},
		{3, 2, 0, Stepping},
		{3, 3, 0, Completed},
	}
	for _, tt := range tests {
		if got := stateOf(tt.steps, tt.idx, tt.drawn); got != tt.want {
			t.Errorf("stateOf(%d,%d,%d) = %s, want %s", tt.steps, tt.idx, tt.drawn, got, tt.want)
		}
	}
}
