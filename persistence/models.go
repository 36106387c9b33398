package persistence

import "time"

// BookingRecord is the raw row shape a record store reads and writes. Times
// of day are stored as elapsed minutes since midnight and dates as
// "2006-01-02" strings, so records stay free of timezone bookkeeping.
type BookingRecord struct {
	ID           string
	Resource     string
	ClientRef    string
	Recurring    bool
	Date         string
	StartMinutes int
	EndMinutes   int
	Status       string
	UpdatedBy    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
