package grid

import "fmt"

// Wire codes used by the trace provider and the browser bridge.
const (
	CodeEmpty    = 0
	CodeStart    = 1
	CodeEnd      = 2
	CodeVisited  = 3
	CodeFrontier = 4
	CodePath     = 5
	CodeObstacle = 6
	CodeBlocked  = 7
)

var statusCodes = [...]int{
	Empty:    CodeEmpty,
	Start:    CodeStart,
	End:      CodeEnd,
	Visited:  CodeVisited,
	Frontier: CodeFrontier,
	Path:     CodePath,
	Obstacle: CodeObstacle,
	Blocked:  CodeBlocked,
}

func (s Status) Code() int { return statusCodes[s] }

// FromCodes builds a grid from a provider matrix. Only obstacle placement is
// taken from the matrix: Start and End are fixed at the corners and replay
// codes (visited, frontier, path) are read as empty. A blocked code is read as
// the obstacle it was promoted from.
func FromCodes(m [][]int) (*Grid, error) {
	size := len(m)
	if size <= 1 {
		return nil, fmt.Errorf("%w: got %d rows", ErrInvalidSize, size)
	}

	var obstacles []Coord
	for r, row := range m {
		if len(row) != size {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrNotSquare, r, len(row), size)
		}
		for c, code := range row {
			switch code {
			case CodeObstacle, CodeBlocked:
				obstacles = append(obstacles, Coord{r, c})
			case CodeEmpty, CodeStart, CodeEnd, CodeVisited, CodeFrontier, CodePath:
			default:
				return nil, fmt.Errorf("%w: %d at %d,%d", ErrUnknownCode, code, r, c)
			}
		}
	}
	return New(size, obstacles)
}

// Codes renders the grid as a matrix of wire codes.
func (g *Grid) Codes() [][]int {
	m := make([][]int, g.size)
	for r := range m {
		row := make([]int, g.size)
		for c := range row {
			row[c] = g.cells[r*g.size+c].Status.Code()
		}
		m[r] = row
	}
	return m
}

// Obstacles returns the coordinates of every Obstacle or Blocked cell.
func (g *Grid) Obstacles() []Coord {
	var out []Coord
	for _, c := range g.cells {
		if c.Status == Obstacle || c.Status == Blocked {
			out = append(out, c.pos)
		}
	}
	return out
}
