package persistence

import "context"

// RecordStore exposes CRUD operations on raw booking records. Implementations
// report failures through this package's sentinel errors.
type RecordStore interface {
	InsertBooking(ctx context.Context, record BookingRecord) error
	GetBooking(ctx context.Context, id string) (BookingRecord, error)
	ListBookingsByDate(ctx context.Context, date string) ([]BookingRecord, error)
	UpdateBooking(ctx context.Context, record BookingRecord, previousStatus string) error
}
