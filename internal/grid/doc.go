// Package grid provides the square cell matrix that a path search is
// replayed on.
//
// A [Grid] is dense and row-major. Exactly one cell is [Start] (0,0) and one
// is [End] (N-1,N-1); both are fixed when the grid is built. Obstacles are
// placed only at construction time.
//
// The package enforces bounds but not transition policy: [Grid.SetStatus]
// overwrites unconditionally and the replay engine decides which
// transitions are legal.
//
// # Snapshots
//
// Grids are mutable. Callers that hand a grid to another goroutine should
// hand out a [Grid.Clone] and keep the original.
package grid
