package grid

import "errors"

var (
	// ErrInvalidSize indicates a grid side length of one or less.
	ErrInvalidSize = errors.New("grid: size must be greater than 1")

	// ErrOutOfBounds indicates a coordinate outside [0, size).
	ErrOutOfBounds = errors.New("grid: coordinate out of bounds")

	// ErrNotSquare indicates a code matrix whose rows differ in length from its height.
	ErrNotSquare = errors.New("grid: matrix is not square")

	// ErrUnknownCode indicates a status code outside the wire vocabulary.
	ErrUnknownCode = errors.New("grid: unknown status code")
)
