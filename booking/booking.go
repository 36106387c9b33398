package booking

import (
	"fmt"
	"time"
)

// Status labels the lifecycle position of a booking.
type Status string

const (
	// StatusToHappen marks a booking that has been accepted and not yet
	// cancelled or charged.
	StatusToHappen Status = "to-happen"
	// StatusCancelled marks a booking released by an explicit cancellation.
	StatusCancelled Status = "cancelled"
	// StatusPaid marks a booking whose charge has been registered.
	StatusPaid Status = "paid"
)

// State couples a status label with the party that last changed it.
type State struct {
	Status    Status
	UpdatedBy string
}

// Terminal reports whether no further transition is defined from the state.
func (s State) Terminal() bool {
	return s.Status == StatusCancelled || s.Status == StatusPaid
}

// Transition returns the state after moving to next, recording the acting
// party. Only to-happen bookings may move, and only to cancelled or paid.
func (s State) Transition(next Status, actor string) (State, error) {
	if s.Status != StatusToHappen {
		return State{}, fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, s.Status)
	}
	if next != StatusCancelled && next != StatusPaid {
		return State{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	return State{Status: next, UpdatedBy: actor}, nil
}

// Booking is a reservation of one resource for a time range on a date. Only
// State mutates after creation; cancellation is a state transition, never a
// physical delete.
type Booking struct {
	ID        string
	Resource  string
	ClientRef string
	Recurring bool
	Date      time.Time
	Start     TimeOfDay
	End       TimeOfDay
	State     State
}

// Collides reports whether the candidate range [start, end) overlaps the
// booking's own range. Both ranges are half-open, so a booking ending exactly
// where another starts does not collide.
func (b Booking) Collides(start, end TimeOfDay) bool {
	return !(end <= b.Start || start >= b.End)
}

// DateKey is the canonical day layout used when bookings are grouped, keyed,
// or persisted by date.
const DateKey = "2006-01-02"

// SameDate reports whether two instants fall on the same calendar day.
func SameDate(a, b time.Time) bool {
	return a.Format(DateKey) == b.Format(DateKey)
}
