package storage

// ErrNotFound is returned when a requested record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &NotFoundError{}

// NotFoundError represents a missing attempt or observation set.
type NotFoundError struct {
	Kind string // "attempt" or "observations"
	Key  string
}

func (e *NotFoundError) Error() string {
	if e.Kind != "" {
		return e.Kind + " not found: " + e.Key
	}
	return "not found"
}

func (e *NotFoundError) Is(target error) bool {
	_, ok := target.(*NotFoundError)
	return ok
}
