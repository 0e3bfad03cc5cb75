// Package viz provides the interactive terminal front end for search replays.
//
// The package implements a TUI using the Bubble Tea framework:
//
//   - [Model]: replay view driving a [replay.Engine] through a [provider.Loader]
//   - [RenderGrid]: colored rendering of a grid snapshot
//   - Theme selection with 4 built-in color schemes
//
// # Key Bindings
//
//	n     - Apply the next step
//	Space - Play to the end / stop
//	r     - Reset to the loaded grid
//	g     - Regenerate from the trace service
//	e     - Load an empty grid
//	a     - Cycle algorithm
//	+/-   - Change obstacle count
//	t     - Cycle color themes
//	?     - Show full help
package viz
