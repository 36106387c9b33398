package booking

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository captures the persistence interactions needed by the system.
//
// All returns every booking recorded for the date, including cancelled and
// paid ones; filtering is the system's job. Implementations map their own
// storage failures onto this package's sentinels: a uniqueness conflict
// surfaces as ErrUnavailable, a missing record as ErrNotFound, and an update
// whose previous-state guard no longer matches as ErrInvalidTransition.
type Repository interface {
	Add(ctx context.Context, b Booking) error
	All(ctx context.Context, date time.Time) ([]Booking, error)
	Update(ctx context.Context, b Booking, previous State) error
}

// System owns the block table for one facility: it validates requested ranges
// against operating hours, tests candidates for collisions, and mediates every
// booking mutation through the repository collaborator.
type System struct {
	start TimeOfDay
	end   TimeOfDay
	step  int

	repo        Repository
	idGenerator func() string
	logger      *slog.Logger

	locks slotLocks
}

// NewSystem wires a booking system for the window [start, end) divided into
// stepMinutes blocks. A nil idGenerator defaults to random UUIDs.
func NewSystem(start, end TimeOfDay, stepMinutes int, repo Repository, idGenerator func() string) (*System, error) {
	return NewSystemWithLogger(start, end, stepMinutes, repo, idGenerator, nil)
}

// NewSystemWithLogger behaves like NewSystem and attaches a base logger used
// when the context does not carry one.
func NewSystemWithLogger(start, end TimeOfDay, stepMinutes int, repo Repository, idGenerator func() string, logger *slog.Logger) (*System, error) {
	vErr := &ValidationError{}
	if stepMinutes <= 0 {
		vErr.add("step", "block length must be positive")
	}
	if end < start {
		vErr.add("hours", "closing time precedes opening time")
	}
	if vErr.HasErrors() {
		return nil, vErr
	}
	if idGenerator == nil {
		idGenerator = uuid.NewString
	}
	return &System{
		start:       start,
		end:         end,
		step:        stepMinutes,
		repo:        repo,
		idGenerator: idGenerator,
		logger:      logger,
	}, nil
}

// Blocks returns a restartable sequence of the facility's blocks at or after
// the cutoff. The table is recomputed on each call, so every range statement
// observes a fresh, complete pass.
func (s *System) Blocks(from *TimeOfDay) iter.Seq[Block] {
	return func(yield func(Block) bool) {
		for _, block := range CreateBlocks(s.start, s.end, s.step) {
			if from != nil && block.Start < *from {
				continue
			}
			if !yield(block) {
				return
			}
		}
	}
}

// BlockRange maps a booking's boundaries onto block indices for rendering.
// The end boundary of the final block is not a block start of its own; a
// booking ending exactly at closing time maps to the block count instead.
func (s *System) BlockRange(start, end TimeOfDay) (int, int, error) {
	blocks := CreateBlocks(s.start, s.end, s.step)

	startIndex, endIndex := -1, -1
	if end == s.end {
		endIndex = len(blocks)
	}
	for _, block := range blocks {
		if block.Start == start {
			startIndex = block.Index
		}
		if block.Start == end {
			endIndex = block.Index
		}
	}

	vErr := &ValidationError{}
	if startIndex < 0 {
		vErr.add("start", fmt.Sprintf("%s is not a block boundary", start))
	}
	if endIndex < 0 {
		vErr.add("end", fmt.Sprintf("%s is not a block boundary", end))
	}
	if vErr.HasErrors() {
		return 0, 0, vErr
	}
	return startIndex, endIndex, nil
}

// OutOfRange reports whether a booking of the given duration starting at the
// block would leave operating hours. The duration is added to the block's own
// start rather than any rounded value, so durations that are not block
// multiples cannot slip past the closing time by a partial block.
func (s *System) OutOfRange(startBlock Block, d Duration) bool {
	return startBlock.Start < s.start || startBlock.Start.Add(d.Minutes) > s.end
}

// Available reports whether the candidate range is free of collisions for the
// resource on the date. Cancelled bookings no longer occupy their slot; paid
// ones still do.
func (s *System) Available(ctx context.Context, date time.Time, resource string, startBlock Block, d Duration) (bool, error) {
	if s.repo == nil {
		return false, fmt.Errorf("booking repository not configured")
	}

	candidateEnd := startBlock.Start.Add(d.Minutes)
	existing, err := s.repo.All(ctx, date)
	if err != nil {
		return false, err
	}
	for _, b := range existing {
		if b.Resource != resource {
			continue
		}
		if b.State.Status == StatusCancelled {
			continue
		}
		if b.Collides(startBlock.Start, candidateEnd) {
			return false, nil
		}
	}
	return true, nil
}

// BookParams wraps the data required to accept a booking.
type BookParams struct {
	Resource   string
	ClientRef  string
	Date       time.Time
	StartBlock Block
	Duration   Duration
	Recurring  bool
}

// Book validates the candidate against operating hours and then against the
// date's existing bookings, never trusting a caller's prior check, and
// persists an accepted booking in the to-happen state. The check-then-insert
// sequence runs inside a per-resource-per-date critical section so two
// concurrent requests for one slot cannot both pass the availability scan.
func (s *System) Book(ctx context.Context, params BookParams) (Booking, error) {
	if s.repo == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}
	logger := operationLogger(ctx, s.logger, "book",
		"resource", params.Resource, "date", params.Date.Format(DateKey), "start", params.StartBlock.Start.String())

	if params.Duration.Minutes <= 0 {
		vErr := &ValidationError{}
		vErr.add("duration", "duration must be positive")
		return Booking{}, vErr
	}

	unlock := s.locks.lock(params.Resource, params.Date)
	defer unlock()

	if s.OutOfRange(params.StartBlock, params.Duration) {
		logger.Info("booking rejected", "reason", ErrorKind(ErrOutOfHours))
		return Booking{}, ErrOutOfHours
	}

	available, err := s.Available(ctx, params.Date, params.Resource, params.StartBlock, params.Duration)
	if err != nil {
		return Booking{}, err
	}
	if !available {
		logger.Info("booking rejected", "reason", ErrorKind(ErrUnavailable))
		return Booking{}, ErrUnavailable
	}

	b := Booking{
		ID:        s.idGenerator(),
		Resource:  params.Resource,
		ClientRef: params.ClientRef,
		Recurring: params.Recurring,
		Date:      params.Date,
		Start:     params.StartBlock.Start,
		End:       params.StartBlock.Start.Add(params.Duration.Minutes),
		State:     State{Status: StatusToHappen},
	}

	if err := s.repo.Add(ctx, b); err != nil {
		logger.Error("booking persist failed", "error", err, "kind", ErrorKind(err))
		return Booking{}, err
	}

	logger.Info("booking accepted", "booking_id", b.ID, "end", b.End.String())
	return b, nil
}

// BookingView pairs a booking with its block-index range for rendering.
type BookingView struct {
	Booking    Booking
	StartIndex int
	EndIndex   int
}

// Bookings derives the render views for every booking on the date, ordered by
// start time. It is a pure derivation with no side effects.
func (s *System) Bookings(ctx context.Context, date time.Time) ([]BookingView, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("booking repository not configured")
	}

	all, err := s.repo.All(ctx, date)
	if err != nil {
		return nil, err
	}

	views := make([]BookingView, 0, len(all))
	for _, b := range all {
		startIndex, endIndex, err := s.BlockRange(b.Start, b.End)
		if err != nil {
			return nil, fmt.Errorf("booking %s is not block aligned: %w", b.ID, err)
		}
		views = append(views, BookingView{Booking: b, StartIndex: startIndex, EndIndex: endIndex})
	}

	sort.SliceStable(views, func(i, j int) bool {
		if views[i].Booking.Start == views[j].Booking.Start {
			return views[i].Booking.ID < views[j].Booking.ID
		}
		return views[i].Booking.Start < views[j].Booking.Start
	})
	return views, nil
}

// CancelParams wraps the data required to cancel a booking.
//
// Definitively distinguishes the two cancellation scopes for recurring
// bookings: false cancels only the occurrence on Date, true cancels the
// booking itself permanently. For one-off bookings the flag has no effect.
type CancelParams struct {
	Booking      Booking
	Actor        string
	Date         time.Time
	Definitively bool
}

// Cancel transitions a booking to cancelled, recording the acting party.
// Cancelling an already terminal booking fails with ErrInvalidTransition
// before any repository call.
func (s *System) Cancel(ctx context.Context, params CancelParams) (Booking, error) {
	if s.repo == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}
	logger := operationLogger(ctx, s.logger, "cancel",
		"booking_id", params.Booking.ID, "actor", params.Actor)

	previous := params.Booking.State
	next, err := previous.Transition(StatusCancelled, params.Actor)
	if err != nil {
		logger.Info("cancel rejected", "reason", ErrorKind(err))
		return Booking{}, err
	}

	if params.Booking.Recurring && !params.Definitively {
		// A single occurrence is released by recording a cancelled copy for
		// that date; the recurring booking itself stays untouched.
		occurrence := params.Booking
		occurrence.ID = s.idGenerator()
		occurrence.Date = params.Date
		occurrence.Recurring = false
		occurrence.State = next
		if err := s.repo.Add(ctx, occurrence); err != nil {
			return Booking{}, err
		}
		logger.Info("occurrence cancelled", "occurrence_id", occurrence.ID, "date", params.Date.Format(DateKey))
		return occurrence, nil
	}

	cancelled := params.Booking
	cancelled.State = next
	if err := s.repo.Update(ctx, cancelled, previous); err != nil {
		logger.Error("cancel persist failed", "error", err, "kind", ErrorKind(err))
		return Booking{}, err
	}
	logger.Info("booking cancelled")
	return cancelled, nil
}

// ChargeParams wraps the data required to register a charge for a booking.
// NewTransaction is the caller-supplied accounting hook; the paid transition
// is persisted only after it succeeds.
type ChargeParams struct {
	Booking        Booking
	Actor          string
	Date           time.Time
	NewTransaction func(Booking) error
}

// RegisterCharge transitions a booking to paid, recording the acting party.
// Charging a cancelled booking fails with ErrInvalidTransition.
func (s *System) RegisterCharge(ctx context.Context, params ChargeParams) (Booking, error) {
	if s.repo == nil {
		return Booking{}, fmt.Errorf("booking repository not configured")
	}
	logger := operationLogger(ctx, s.logger, "register_charge",
		"booking_id", params.Booking.ID, "actor", params.Actor)

	previous := params.Booking.State
	next, err := previous.Transition(StatusPaid, params.Actor)
	if err != nil {
		logger.Info("charge rejected", "reason", ErrorKind(err))
		return Booking{}, err
	}

	charged := params.Booking
	charged.State = next

	if params.NewTransaction != nil {
		if err := params.NewTransaction(charged); err != nil {
			return Booking{}, fmt.Errorf("booking: charge transaction: %w", err)
		}
	}

	if err := s.repo.Update(ctx, charged, previous); err != nil {
		logger.Error("charge persist failed", "error", err, "kind", ErrorKind(err))
		return Booking{}, err
	}
	logger.Info("charge registered", "date", params.Date.Format(DateKey))
	return charged, nil
}

// slotLocks hands out one mutex per resource-and-date pair so availability
// checks and their follow-up insert form a critical section.
type slotLocks struct {
	mu    sync.Mutex
	slots map[string]*sync.Mutex
}

func (l *slotLocks) lock(resource string, date time.Time) func() {
	key := resource + "|" + date.Format(DateKey)

	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[string]*sync.Mutex)
	}
	slot, ok := l.slots[key]
	if !ok {
		slot = &sync.Mutex{}
		l.slots[key] = slot
	}
	l.mu.Unlock()

	slot.Lock()
	return slot.Unlock
}
