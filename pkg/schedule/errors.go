package schedule

import (
	"errors"
	"fmt"
)

// Schema and consistency failures are fatal to the current week build: the
// pipeline fails closed and no partial grid is ever returned.
var (
	ErrTooManyRooms    = fmt.Errorf("too many rooms in response")
	ErrDuplicateRoom   = fmt.Errorf("duplicate room in response")
	ErrUnknownRoom     = fmt.Errorf("room is not part of the visible room set")
	ErrDuplicateSlot   = fmt.Errorf("duplicate slot id in response")
	ErrSlotOverlap     = fmt.Errorf("overlapping slots in the same room and day")
	ErrSlotOutsideWeek = fmt.Errorf("slot outside displayed week range")
)

// ErrStaleBookingRef signals a programming defect: the form referenced a
// booking that is absent from the current grid. It must never be downgraded
// to insert mode.
var ErrStaleBookingRef = fmt.Errorf("referenced booking not present in current grid")

// ValidationError describes the first schema rule a raw payload violated.
// The field/rule detail is for logs; user-facing messages stay generic so raw
// upstream payloads never leak.
type ValidationError struct {
	Field string
	Rule  string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid upstream data: %s: %s", e.Field, e.Rule)
}

// IsGridError reports whether err is a schema or consistency failure of the
// week build pipeline, as opposed to an infrastructure error.
func IsGridError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return errors.Is(err, ErrTooManyRooms) ||
		errors.Is(err, ErrDuplicateRoom) ||
		errors.Is(err, ErrUnknownRoom) ||
		errors.Is(err, ErrDuplicateSlot) ||
		errors.Is(err, ErrSlotOverlap) ||
		errors.Is(err, ErrSlotOutsideWeek)
}

// UserValidationError is a recoverable, form-local rejection of a submission
// (slot taken, meeting too long). It blocks the submit without touching the
// grid or the cache.
type UserValidationError struct {
	Message string
}

func (e *UserValidationError) Error() string {
	return e.Message
}

// BackendError carries a booking-store rejection whose message is safe to
// surface inline on the form.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}
