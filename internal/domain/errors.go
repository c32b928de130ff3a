package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist (or was deleted concurrently).
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. missing required field, unparseable date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned when joining (or optionally creating) a trip would put
// a user on two trips on the same calendar day.
// Handlers should map this to HTTP 409.
var ErrConflict = errors.New("schedule conflict")

// ErrForbidden is returned when the actor may not perform a transition, such as
// a non-creator editing a trip or the creator leaving their own trip.
// Handlers should map this to HTTP 403.
var ErrForbidden = errors.New("not authorized")

// ErrUnavailable marks a failed store or network call that the user may retry.
// Handlers should map this to HTTP 503.
var ErrUnavailable = errors.New("temporarily unavailable")

// ConflictError identifies the trip that collides with the requested one.
// errors.Is(err, ErrConflict) is true for any *ConflictError.
type ConflictError struct {
	TripID    uuid.UUID
	TripTitle string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: already on %q that day", ErrConflict, e.TripTitle)
}

// Is makes errors.Is(err, ErrConflict) match.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
