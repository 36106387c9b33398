// Package memory provides a mutex-guarded in-memory record store. It backs
// tests and single-process deployments that do not need durability.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/example/facility-booking/persistence"
)

// Store implements persistence.RecordStore over plain maps.
type Store struct {
	mu       sync.RWMutex
	bookings map[string]persistence.BookingRecord
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{bookings: make(map[string]persistence.BookingRecord)}
}

// InsertBooking stores a new booking record. The to-happen slot uniqueness
// the sqlite store enforces with a partial index is mirrored here.
func (s *Store) InsertBooking(ctx context.Context, record persistence.BookingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bookings[record.ID]; ok {
		return persistence.ErrDuplicate
	}
	if record.Status == "to-happen" {
		for _, existing := range s.bookings {
			if existing.Status != "to-happen" {
				continue
			}
			if existing.Resource == record.Resource && existing.Date == record.Date && existing.StartMinutes == record.StartMinutes {
				return persistence.ErrDuplicate
			}
		}
	}

	s.bookings[record.ID] = record
	return nil
}

// GetBooking retrieves a booking record by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.bookings[id]
	if !ok {
		return persistence.BookingRecord{}, persistence.ErrNotFound
	}
	return record, nil
}

// ListBookingsByDate returns every record for the date ordered by start time,
// then ID.
func (s *Store) ListBookingsByDate(ctx context.Context, date string) ([]persistence.BookingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]persistence.BookingRecord, 0)
	for _, record := range s.bookings {
		if record.Date == date {
			records = append(records, record)
		}
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].StartMinutes == records[j].StartMinutes {
			return records[i].ID < records[j].ID
		}
		return records[i].StartMinutes < records[j].StartMinutes
	})
	return records, nil
}

// UpdateBooking replaces an existing record, guarded by its previous status.
func (s *Store) UpdateBooking(ctx context.Context, record persistence.BookingRecord, previousStatus string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.bookings[record.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	if existing.Status != previousStatus {
		return persistence.ErrStaleState
	}

	record.CreatedAt = existing.CreatedAt
	s.bookings[record.ID] = record
	return nil
}
