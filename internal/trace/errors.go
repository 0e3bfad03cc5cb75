package trace

import (
	"errors"
	"fmt"
)

// ErrMalformed indicates a step record that is neither a frontier map nor a
// final path, or one carrying a non-numeric coordinate.
var ErrMalformed = errors.New("trace: malformed step record")

// StepError wraps a parse failure with the index of the offending record.
type StepError struct {
	Index   int
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d: %v", e.Index, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
