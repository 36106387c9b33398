package booking

import "errors"

var (
	// ErrOutOfHours is returned when a requested range falls outside the
	// facility's operating hours.
	ErrOutOfHours = errors.New("booking: request outside operating hours")
	// ErrUnavailable is returned when a requested range collides with an
	// existing booking for the same resource.
	ErrUnavailable = errors.New("booking: timeslot unavailable")
	// ErrInvalidTransition is returned when cancel or charge is invoked on a
	// booking already in a terminal state.
	ErrInvalidTransition = errors.New("booking: invalid state transition")
	// ErrNotFound is returned when the referenced booking does not exist.
	ErrNotFound = errors.New("booking: not found")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
