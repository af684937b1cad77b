package curve

import "fmt"

// InvalidParameterError indicates a parameter vector that must not be
// evaluated (non-positive lambda). Structural: callers should not retry.
type InvalidParameterError struct {
	Name  string
	Value float64
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter: %s = %g (must be > 0)", e.Name, e.Value)
}

func (e *InvalidParameterError) Is(target error) bool {
	_, ok := target.(*InvalidParameterError)
	return ok
}

// ErrInvalidParameter can be matched with errors.Is.
var ErrInvalidParameter = &InvalidParameterError{}

// InvalidObservationSetError indicates an observation set that violates the
// supplier contract. Structural: raised before any optimizer runs.
type InvalidObservationSetError struct {
	Reason string
	Index  int
}

func (e *InvalidObservationSetError) Error() string {
	if e.Reason != "" && e.Index > 0 {
		return fmt.Sprintf("invalid observation set: %s (observation %d)", e.Reason, e.Index)
	}
	return "invalid observation set: " + e.Reason
}

func (e *InvalidObservationSetError) Is(target error) bool {
	_, ok := target.(*InvalidObservationSetError)
	return ok
}

// ErrInvalidObservationSet can be matched with errors.Is.
var ErrInvalidObservationSet = &InvalidObservationSetError{}
