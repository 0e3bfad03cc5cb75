package replay

import "errors"

var (
	// ErrNoTraceLoaded indicates an operation on an Idle engine.
	ErrNoTraceLoaded = errors.New("replay: no trace loaded")

	// ErrAlreadyPlaying indicates a second PlayToEnd while one is in flight.
	ErrAlreadyPlaying = errors.New("replay: play already in progress")

	// ErrPlayInProgress indicates a manual step attempted during a play.
	ErrPlayInProgress = errors.New("replay: cannot step while playing")

	// ErrNoGrid indicates Load was called without a grid.
	ErrNoGrid = errors.New("replay: nil grid")
)
