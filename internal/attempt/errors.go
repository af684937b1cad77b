package attempt

import "fmt"

// ErrBusy is the target for errors.Is checks on concurrent improve rejections.
var ErrBusy = &BusyError{}

// BusyError reports an improve call on an attempt that already has one in
// flight.
type BusyError struct {
	ID string
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("attempt %s: improve already in progress", e.ID)
}

func (e *BusyError) Is(target error) bool {
	_, ok := target.(*BusyError)
	return ok
}
