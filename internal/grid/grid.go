package grid

import (
	"fmt"
	"strings"
)

type Status uint8

const (
	Empty Status = iota
	Start
	End
	Visited
	Frontier
	Path
	Obstacle
	Blocked
)

var statusNames = [...]string{
	Empty:    "empty",
	Start:    "start",
	End:      "end",
	Visited:  "visited",
	Frontier: "frontier",
	Path:     "path",
	Obstacle: "obstacle",
	Blocked:  "blocked",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Statuses lists every status in declaration order.
func Statuses() []Status {
	return []Status{Empty, Start, End, Visited, Frontier, Path, Obstacle, Blocked}
}

// Coord is a 0-based (row, col) pair.
type Coord struct {
	Row int
	Col int
}

func (c Coord) String() string { return fmt.Sprintf("%d,%d", c.Row, c.Col) }

// Cell pairs an immutable position with its current status.
type Cell struct {
	pos    Coord
	Status Status
}

func (c Cell) Row() int     { return c.pos.Row }
func (c Cell) Col() int     { return c.pos.Col }
func (c Cell) Coord() Coord { return c.pos }

type Grid struct {
	size  int
	cells []Cell
}

// New builds a size×size grid with Start at (0,0) and End at (size-1,size-1).
// Obstacle entries that land on Start or End are ignored.
func New(size int, obstacles []Coord) (*Grid, error) {
	if size <= 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidSize, size)
	}

	g := &Grid{size: size, cells: make([]Cell, size*size)}
	for r := 0; r < size; r++ {
		for c := 0; c < size; c++ {
			g.cells[r*size+c] = Cell{pos: Coord{r, c}}
		}
	}

	for _, o := range obstacles {
		if !g.InBounds(o) {
			return nil, fmt.Errorf("%w: obstacle %s on %dx%d grid", ErrOutOfBounds, o, size, size)
		}
		g.cells[g.index(o)].Status = Obstacle
	}

	g.cells[g.index(g.Start())].Status = Start
	g.cells[g.index(g.End())].Status = End
	return g, nil
}

func (g *Grid) Size() int { return g.size }

func (g *Grid) Start() Coord { return Coord{0, 0} }

func (g *Grid) End() Coord { return Coord{g.size - 1, g.size - 1} }

func (g *Grid) InBounds(c Coord) bool {
	return c.Row >= 0 && c.Row < g.size && c.Col >= 0 && c.Col < g.size
}

func (g *Grid) index(c Coord) int { return c.Row*g.size + c.Col }

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := &Grid{size: g.size, cells: make([]Cell, len(g.cells))}
	copy(c.cells, g.cells)
	return c
}

func (g *Grid) Status(c Coord) (Status, error) {
	if !g.InBounds(c) {
		return Empty, fmt.Errorf("%w: %s on %dx%d grid", ErrOutOfBounds, c, g.size, g.size)
	}
	return g.cells[g.index(c)].Status, nil
}

// SetStatus overwrites the status at c.
func (g *Grid) SetStatus(c Coord, s Status) error {
	if !g.InBounds(c) {
		return fmt.Errorf("%w: %s on %dx%d grid", ErrOutOfBounds, c, g.size, g.size)
	}
	g.cells[g.index(c)].Status = s
	return nil
}

func (g *Grid) Cell(c Coord) (Cell, error) {
	if !g.InBounds(c) {
		return Cell{}, fmt.Errorf("%w: %s on %dx%d grid", ErrOutOfBounds, c, g.size, g.size)
	}
	return g.cells[g.index(c)], nil
}

// Row returns a copy of row r.
func (g *Grid) Row(r int) []Cell {
	if r < 0 || r >= g.size {
		return nil
	}
	row := make([]Cell, g.size)
	copy(row, g.cells[r*g.size:(r+1)*g.size])
	return row
}

// Each calls fn for every cell in row-major order.
func (g *Grid) Each(fn func(Cell)) {
	for _, c := range g.cells {
		fn(c)
	}
}

func (g *Grid) CountByStatus(s Status) int {
	n := 0
	for _, c := range g.cells {
		if c.Status == s {
			n++
		}
	}
	return n
}

// Counts returns the number of cells in every status.
func (g *Grid) Counts() map[Status]int {
	counts := make(map[Status]int, len(statusNames))
	for _, c := range g.cells {
		counts[c.Status]++
	}
	return counts
}

// Equal reports whether both grids have the same size and statuses.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	if g.size != o.size {
		return false
	}
	for i := range g.cells {
		if g.cells[i].Status != o.cells[i].Status {
			return false
		}
	}
	return true
}

var statusGlyphs = [...]byte{
	Empty:    '.',
	Start:    'S',
	End:      'E',
	Visited:  'v',
	Frontier: 'f',
	Path:     '*',
	Obstacle: '#',
	Blocked:  'X',
}

// String renders one line per row, one glyph per cell.
func (g *Grid) String() string {
	var b strings.Builder
	b.Grow(g.size * (g.size + 1))
	for r := 0; r < g.size; r++ {
		for c := 0; c < g.size; c++ {
			b.WriteByte(statusGlyphs[g.cells[r*g.size+c].Status])
		}
		b.WriteByte('\n')
	}
	return b.String()
}
