// Package provider fetches a grid and search trace from the remote
// pathfinding service and maps the response onto grid and trace values.
package provider

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/trace"
)

type Algorithm int

const (
	Dijkstra Algorithm = iota
	AStar
	JPS
)

var algorithmNames = map[Algorithm]string{
	Dijkstra: "dijkstra",
	AStar:    "astar",
	JPS:      "jps",
}

func (a Algorithm) String() string {
	if name, ok := algorithmNames[a]; ok {
		return name
	}
	return fmt.Sprintf("algorithm(%d)", int(a))
}

func (a Algorithm) Valid() bool {
	_, ok := algorithmNames[a]
	return ok
}

func Algorithms() []Algorithm {
	return []Algorithm{Dijkstra, AStar, JPS}
}

// ParseAlgorithm accepts a name ("dijkstra", "astar", "a*", "jps",
// "jump_point") or the numeric selector used on the wire.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dijkstra":
		return Dijkstra, nil
	case "astar", "a*", "a_star", "a-star":
		return AStar, nil
	case "jps", "jump_point", "jump-point", "jumppoint":
		return JPS, nil
	}
	n, err := strconv.Atoi(s)
	if err == nil && Algorithm(n).Valid() {
		return Algorithm(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// Provider returns a grid and the trace of a search over it.
type Provider interface {
	RequestTrace(ctx context.Context, alg Algorithm, obstacleCount int) (*grid.Grid, trace.Trace, error)
}

// Func adapts a function to Provider.
type Func func(ctx context.Context, alg Algorithm, obstacleCount int) (*grid.Grid, trace.Trace, error)

func (f Func) RequestTrace(ctx context.Context, alg Algorithm, obstacleCount int) (*grid.Grid, trace.Trace, error) {
	return f(ctx, alg, obstacleCount)
}
