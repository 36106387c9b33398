package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/facility-booking/booking"
	"github.com/example/facility-booking/lru"
)

// DefaultCacheSize bounds the reconstruction cache when the caller does not
// choose a capacity.
const DefaultCacheSize = 128

// BookingStore adapts a RecordStore to the repository contract consumed by
// booking.System. Reconstructed domain bookings are kept in a bounded LRU
// cache keyed by booking ID, so repeated reads of a date do not rebuild every
// entity from its raw record.
type BookingStore struct {
	records RecordStore
	cache   *lru.Cache[string, booking.Booking]
	now     func() time.Time
}

// NewBookingStore wires a booking store over the given record store. A
// cacheSize of zero or less falls back to DefaultCacheSize; a nil now falls
// back to time.Now.
func NewBookingStore(records RecordStore, cacheSize int, now func() time.Time) (*BookingStore, error) {
	if records == nil {
		return nil, fmt.Errorf("persistence: record store is required")
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, booking.Booking](cacheSize)
	if err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &BookingStore{records: records, cache: cache, now: now}, nil
}

// Add persists a new booking and primes the reconstruction cache.
func (s *BookingStore) Add(ctx context.Context, b booking.Booking) error {
	if err := s.records.InsertBooking(ctx, s.toRecord(b)); err != nil {
		return mapStoreError(err)
	}
	s.cache.Set(b.ID, b)
	return nil
}

// All returns every booking recorded for the date, cancelled and paid ones
// included. Each record is served from the cache when present and rebuilt and
// inserted otherwise.
func (s *BookingStore) All(ctx context.Context, date time.Time) ([]booking.Booking, error) {
	records, err := s.records.ListBookingsByDate(ctx, date.Format(booking.DateKey))
	if err != nil {
		return nil, mapStoreError(err)
	}

	bookings := make([]booking.Booking, 0, len(records))
	for _, record := range records {
		if cached, err := s.cache.Get(record.ID); err == nil {
			bookings = append(bookings, cached)
			continue
		}
		rebuilt, err := s.fromRecord(record)
		if err != nil {
			return nil, err
		}
		s.cache.Set(record.ID, rebuilt)
		bookings = append(bookings, rebuilt)
	}
	return bookings, nil
}

// Update persists a state change guarded by the booking's previous state and
// refreshes the cached entity.
func (s *BookingStore) Update(ctx context.Context, b booking.Booking, previous booking.State) error {
	if err := s.records.UpdateBooking(ctx, s.toRecord(b), string(previous.Status)); err != nil {
		return mapStoreError(err)
	}
	s.cache.Set(b.ID, b)
	return nil
}

// Get returns one booking by ID, read through the cache.
func (s *BookingStore) Get(ctx context.Context, id string) (booking.Booking, error) {
	if cached, err := s.cache.Get(id); err == nil {
		return cached, nil
	}
	record, err := s.records.GetBooking(ctx, id)
	if err != nil {
		return booking.Booking{}, mapStoreError(err)
	}
	rebuilt, err := s.fromRecord(record)
	if err != nil {
		return booking.Booking{}, err
	}
	s.cache.Set(id, rebuilt)
	return rebuilt, nil
}

// CachedIDs exposes the cache's recency order, most recent first.
func (s *BookingStore) CachedIDs() []string {
	return s.cache.Keys()
}

func (s *BookingStore) toRecord(b booking.Booking) BookingRecord {
	now := s.now().UTC()
	return BookingRecord{
		ID:           b.ID,
		Resource:     b.Resource,
		ClientRef:    b.ClientRef,
		Recurring:    b.Recurring,
		Date:         b.Date.Format(booking.DateKey),
		StartMinutes: int(b.Start),
		EndMinutes:   int(b.End),
		Status:       string(b.State.Status),
		UpdatedBy:    b.State.UpdatedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *BookingStore) fromRecord(record BookingRecord) (booking.Booking, error) {
	date, err := time.Parse(booking.DateKey, record.Date)
	if err != nil {
		return booking.Booking{}, fmt.Errorf("persistence: booking %s has invalid date %q: %w", record.ID, record.Date, err)
	}
	return booking.Booking{
		ID:        record.ID,
		Resource:  record.Resource,
		ClientRef: record.ClientRef,
		Recurring: record.Recurring,
		Date:      date,
		Start:     booking.TimeOfDay(record.StartMinutes),
		End:       booking.TimeOfDay(record.EndMinutes),
		State: booking.State{
			Status:    booking.Status(record.Status),
			UpdatedBy: record.UpdatedBy,
		},
	}, nil
}

// mapStoreError translates record-store sentinels into the errors the booking
// package documents on its Repository contract.
func mapStoreError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return booking.ErrNotFound
	case errors.Is(err, ErrDuplicate):
		return booking.ErrUnavailable
	case errors.Is(err, ErrStaleState):
		return booking.ErrInvalidTransition
	}
	return err
}
