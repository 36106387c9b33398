// Package sqlite provides the durable record store used in production
// deployments, backed by the pure-Go SQLite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/facility-booking/persistence"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS bookings (
	id            TEXT PRIMARY KEY,
	resource      TEXT NOT NULL,
	client_ref    TEXT NOT NULL,
	recurring     INTEGER NOT NULL DEFAULT 0,
	date          TEXT NOT NULL,
	start_minutes INTEGER NOT NULL,
	end_minutes   INTEGER NOT NULL,
	status        TEXT NOT NULL,
	updated_by    TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bookings_date ON bookings (date);

CREATE UNIQUE INDEX IF NOT EXISTS idx_bookings_open_slot
	ON bookings (resource, date, start_minutes)
	WHERE status = 'to-happen';
`

// Store implements persistence.RecordStore using SQLite. The partial unique
// index on open slots lets the database reject a double booking even when two
// processes pass the availability scan at the same time.
type Store struct {
	db *sql.DB
}

// Open connects to the database identified by dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", dsn, err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Migrate applies the bookings schema.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// InsertBooking stores a new booking record.
func (s *Store) InsertBooking(ctx context.Context, record persistence.BookingRecord) error {
	const query = `
		INSERT INTO bookings (id, resource, client_ref, recurring, date, start_minutes, end_minutes, status, updated_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		record.ID,
		record.Resource,
		record.ClientRef,
		boolToInt(record.Recurring),
		record.Date,
		record.StartMinutes,
		record.EndMinutes,
		record.Status,
		record.UpdatedBy,
		record.CreatedAt.UTC().Format(time.RFC3339),
		record.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return mapError(err)
}

// GetBooking retrieves a booking record by ID.
func (s *Store) GetBooking(ctx context.Context, id string) (persistence.BookingRecord, error) {
	const query = selectColumns + ` WHERE id = ?`
	record, err := scanBooking(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.BookingRecord{}, persistence.ErrNotFound
		}
		return persistence.BookingRecord{}, mapError(err)
	}
	return record, nil
}

// ListBookingsByDate returns every record for the date ordered by start time,
// then ID.
func (s *Store) ListBookingsByDate(ctx context.Context, date string) ([]persistence.BookingRecord, error) {
	const query = selectColumns + ` WHERE date = ? ORDER BY start_minutes, id`
	rows, err := s.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	records := make([]persistence.BookingRecord, 0)
	for rows.Next() {
		record, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return records, nil
}

// UpdateBooking replaces an existing record, guarded by its previous status.
func (s *Store) UpdateBooking(ctx context.Context, record persistence.BookingRecord, previousStatus string) error {
	const query = `
		UPDATE bookings
		SET resource = ?, client_ref = ?, recurring = ?, date = ?, start_minutes = ?, end_minutes = ?, status = ?, updated_by = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`
	result, err := s.db.ExecContext(ctx, query,
		record.Resource,
		record.ClientRef,
		boolToInt(record.Recurring),
		record.Date,
		record.StartMinutes,
		record.EndMinutes,
		record.Status,
		record.UpdatedBy,
		record.UpdatedAt.UTC().Format(time.RFC3339),
		record.ID,
		previousStatus,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if affected == 0 {
		// Distinguish a missing record from a state moved under our feet.
		if _, err := s.GetBooking(ctx, record.ID); err != nil {
			return err
		}
		return persistence.ErrStaleState
	}
	return nil
}

const selectColumns = `
	SELECT id, resource, client_ref, recurring, date, start_minutes, end_minutes, status, updated_by, created_at, updated_at
	FROM bookings`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (persistence.BookingRecord, error) {
	var (
		record    persistence.BookingRecord
		recurring int
		createdAt string
		updatedAt string
	)
	err := row.Scan(
		&record.ID,
		&record.Resource,
		&record.ClientRef,
		&recurring,
		&record.Date,
		&record.StartMinutes,
		&record.EndMinutes,
		&record.Status,
		&record.UpdatedBy,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return persistence.BookingRecord{}, err
	}

	record.Recurring = recurring != 0
	if record.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return persistence.BookingRecord{}, fmt.Errorf("sqlite: booking %s has invalid created_at: %w", record.ID, err)
	}
	if record.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return persistence.BookingRecord{}, fmt.Errorf("sqlite: booking %s has invalid updated_at: %w", record.ID, err)
	}
	return record, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return persistence.ErrDuplicate
	}
	return err
}
