package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for integration and event scheduling.
var (
	// ErrInvalidConfiguration indicates non-positive or inverted step bounds.
	ErrInvalidConfiguration = errors.New("dynamo: invalid step size configuration")

	// ErrOutOfRange indicates a step size outside [dt_min, dt_max].
	ErrOutOfRange = errors.New("dynamo: step size out of range")

	// ErrNegativeRecurrence indicates a negative recurrence interval.
	ErrNegativeRecurrence = errors.New("dynamo: recurrence interval must be non-negative")

	// ErrEmptyCalendar indicates a peek on an empty event calendar.
	ErrEmptyCalendar = errors.New("dynamo: event calendar is empty")

	// ErrInvalidState indicates a state vector with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrStepBudget indicates the run hit its step limit before the target time.
	ErrStepBudget = errors.New("dynamo: step budget exhausted")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
