package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/facility-booking/booking"
	"github.com/example/facility-booking/persistence"
	"github.com/example/facility-booking/persistence/memory"
)

var bookingCounter uint64

// BookingOption configures the generated booking fixture.
type BookingOption func(*booking.Booking)

// NewBookingFixture returns a deterministic to-happen booking with optional
// overrides.
func NewBookingFixture(opts ...BookingOption) booking.Booking {
	idx := atomic.AddUint64(&bookingCounter, 1)
	fixture := booking.Booking{
		ID:        fmt.Sprintf("booking-%03d", idx),
		Resource:  "court-1",
		ClientRef: fmt.Sprintf("client-%03d", idx),
		Date:      ReferenceTime(),
		Start:     booking.NewTimeOfDay(9, 0),
		End:       booking.NewTimeOfDay(10, 0),
		State:     booking.State{Status: booking.StatusToHappen},
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithResource overrides the booked resource.
func WithResource(resource string) BookingOption {
	return func(b *booking.Booking) {
		b.Resource = resource
	}
}

// WithDate overrides the booking date.
func WithDate(date time.Time) BookingOption {
	return func(b *booking.Booking) {
		b.Date = date
	}
}

// WithRange overrides the booked time range.
func WithRange(start, end booking.TimeOfDay) BookingOption {
	return func(b *booking.Booking) {
		b.Start = start
		b.End = end
	}
}

// WithStatus overrides the booking state label.
func WithStatus(status booking.Status) BookingOption {
	return func(b *booking.Booking) {
		b.State.Status = status
	}
}

// WithRecurring marks the booking as recurring.
func WithRecurring() BookingOption {
	return func(b *booking.Booking) {
		b.Recurring = true
	}
}

// Harness bundles a booking system wired over an in-memory store with
// deterministic collaborators.
type Harness struct {
	System  *booking.System
	Store   *persistence.BookingStore
	Records *memory.Store
	Clock   *Clock
	IDs     *IDGenerator
}

// NewHarness builds a system for an 08:00-22:00 facility with 30 minute
// blocks, backed by a fresh in-memory record store.
func NewHarness() (*Harness, error) {
	records := memory.NewStore()
	clock := NewClock(time.Time{})
	ids := NewIDGenerator("booking")

	store, err := persistence.NewBookingStore(records, persistence.DefaultCacheSize, clock.NowFunc())
	if err != nil {
		return nil, err
	}
	system, err := booking.NewSystem(booking.NewTimeOfDay(8, 0), booking.NewTimeOfDay(22, 0), 30, store, ids.NextFunc())
	if err != nil {
		return nil, err
	}

	return &Harness{
		System:  system,
		Store:   store,
		Records: records,
		Clock:   clock,
		IDs:     ids,
	}, nil
}
