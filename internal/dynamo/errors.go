package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration calls. Every precondition violation wraps
// ErrInvalidArgument so callers can test for it with errors.Is.
var (
	// ErrInvalidArgument indicates a precondition of a solve call was violated.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrDimensionMismatch indicates a state or derivative whose length differs
	// from what the system expects.
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch between state and system", ErrInvalidArgument)

	// ErrUnknownParam indicates a parameter name the system does not define.
	ErrUnknownParam = fmt.Errorf("%w: unknown parameter", ErrInvalidArgument)
)

// StepError records where in a solve a step failed.
type StepError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *StepError) Unwrap() error {
	return e.Wrapped
}
