// Package replay turns a precomputed search trace into a sequence of grid
// snapshots.
//
// An [Engine] owns one grid and one trace at a time:
//
//   - [Engine.Load] installs a grid and trace and rewinds the cursor
//   - [Engine.AdvanceOne] applies exactly one step
//   - [Engine.PlayToEnd] publishes paced snapshots on a channel until the
//     trace completes or the play is cancelled
//   - [Engine.Reset] rewinds to the grid captured at load time
//
// # States
//
//	Idle -> Ready -> Stepping -> Completed
//
// Playing is a flag on top of Ready and Stepping. Only one play runs per
// engine; AdvanceOne fails while it does.
//
// # Snapshots
//
// Every step is applied to a clone of the current grid and the clone is
// committed only once the whole step has been applied, so a consumer never
// observes a half-applied step. Snapshots carry their own copy of the grid.
package replay
