package replay

import (
	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/trace"
)

// transition is a fully applied step that has not been committed yet.
type transition struct {
	grid      *grid.Grid
	cursor    Cursor
	pathDrawn int
}

// applyFrontier settles the previous frontier, visits every entry and marks
// its neighbors. It returns the number of cells that became Visited.
func applyFrontier(g *grid.Grid, s trace.FrontierStep) (int, error) {
	visited := 0

	var carried []grid.Coord
	g.Each(func(c grid.Cell) {
		if c.Status == grid.Frontier {
			carried = append(carried, c.Coord())
		}
	})
	for _, c := range carried {
		if err := g.SetStatus(c, grid.Visited); err != nil {
			return visited, err
		}
		visited++
	}

	for _, e := range s.Entries {
		st, err := g.Status(e.From)
		if err != nil {
			return visited, err
		}
		switch st {
		case grid.Empty, grid.Frontier:
			if err := g.SetStatus(e.From, grid.Visited); err != nil {
				return visited, err
			}
			visited++
		}

		for _, n := range e.Neighbors {
			st, err := g.Status(n)
			if err != nil {
				return visited, err
			}
			switch st {
			case grid.Obstacle:
				err = g.SetStatus(n, grid.Blocked)
			case grid.Empty:
				err = g.SetStatus(n, grid.Frontier)
			}
			if err != nil {
				return visited, err
			}
		}
	}
	return visited, nil
}

// pathPending reports whether drawing the path over c would change it.
func pathPending(g *grid.Grid, c grid.Coord) (bool, error) {
	st, err := g.Status(c)
	if err != nil {
		return false, err
	}
	switch st {
	case grid.Start, grid.End, grid.Obstacle, grid.Blocked, grid.Path:
		return false, nil
	}
	return true, nil
}

// drawPath paints path[from:] onto g. With whole unset it stops after the
// first cell that changes, then skips any trailing cells that would not
// change. It returns the index of the first undrawn cell.
func drawPath(g *grid.Grid, path []grid.Coord, from int, whole bool) (int, error) {
	i := from
	for i < len(path) {
		pending, err := pathPending(g, path[i])
		if err != nil {
			return from, err
		}
		i++
		if !pending {
			continue
		}
		if err := g.SetStatus(path[i-1], grid.Path); err != nil {
			return from, err
		}
		if !whole {
			break
		}
	}
	for i < len(path) {
		pending, err := pathPending(g, path[i])
		if err != nil {
			return from, err
		}
		if pending {
			break
		}
		i++
	}
	return i, nil
}
