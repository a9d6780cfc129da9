package vehicle

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is wrapped by every validation failure in this package.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidScenario reports a scenario id outside {1,2,3}.
	ErrInvalidScenario = fmt.Errorf("%w: scenario must be 1, 2 or 3", ErrInvalidInput)
)

// RangeError reports a scalar input outside its accepted interval.
type RangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s must be between %g and %g, got %g", e.Field, e.Min, e.Max, e.Value)
}

// Unwrap lets callers match any RangeError with errors.Is(err, ErrInvalidInput).
func (e *RangeError) Unwrap() error { return ErrInvalidInput }
