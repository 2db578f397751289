package booking

import (
    "context"
    "errors"
    "time"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// MaxSeatsPerBooking caps how many seats one booking request may
// confirm.  Requests above the cap are rejected before the ledger is
// consulted.
const MaxSeatsPerBooking = 2

// Batch describes the reservations confirmed by one successful
// booking request.  Seat numbers are sorted ascending and
// ReservationIDs are index-aligned with SeatNumbers.
type Batch struct {
    ReservationIDs []uint64  `json:"reservation_ids"`
    TripID         uint64    `json:"trip_id"`
    UserID         uint64    `json:"user_id"`
    SeatNumbers    []int     `json:"seat_numbers"`
    CreatedAt      time.Time `json:"created_at"`
}

// HistoryEntry pairs a confirmed reservation with its trip for the
// read-only history projection.
type HistoryEntry struct {
    Reservation model.Reservation
    Trip        model.Trip
}

// Ledger is the durable record of confirmed (trip, seat) pairs.  It
// is the source of truth for availability and the only component
// allowed to mutate it, through TryConfirm.
//
// TryConfirm must be atomic: either every requested seat becomes
// confirmed for the user as one indivisible unit, or none do and a
// *ConflictError names a conflicting seat.  Implementations must
// serialize concurrent calls for the same trip (a per-trip claim);
// calls for different trips must not contend with each other.  The
// claim is released on every exit path before TryConfirm returns.
type Ledger interface {
    // OccupiedSeats returns the confirmed seat numbers for a trip,
    // sorted ascending.  Side-effect free.
    OccupiedSeats(ctx context.Context, tripID uint64) ([]int, error)
    // TryConfirm atomically confirms the given seats for the user.
    TryConfirm(ctx context.Context, tripID uint64, seats []int, userID uint64) (*Batch, error)
    // ReservationsFor returns the user's confirmed reservations,
    // newest first.
    ReservationsFor(ctx context.Context, userID uint64) ([]model.Reservation, error)
}

// Catalog is the read-only trip store the engine joins against for
// the history projection.
type Catalog interface {
    GetByID(ctx context.Context, id uint64) (model.Trip, error)
    // Search returns trips matching origin, destination and
    // departure date exactly, sorted by id for reproducibility.
    Search(ctx context.Context, origin, destination string, date time.Time) ([]model.Trip, error)
}

// HoldStore lets a user park seats for a short time before
// confirming.  Seats held by one user count as conflicts for
// everyone else; a user's own holds never block their confirm.
type HoldStore interface {
    HoldSeats(ctx context.Context, tripID uint64, seats []int, userID uint64, expiresAt time.Time) ([]model.SeatHold, error)
    ReleaseHolds(ctx context.Context, tripID, userID uint64) ([]int, error)
    // HeldSeats returns seat numbers with an unexpired hold, sorted
    // ascending.
    HeldSeats(ctx context.Context, tripID uint64) ([]int, error)
}

// Engine validates booking requests and commits them against the
// seat ledger.  It holds no mutable state of its own; all writes go
// through the ledger's per-trip claim.
type Engine struct {
    ledger  Ledger
    catalog Catalog
}

// NewEngine constructs an Engine.  Both dependencies must be non-nil.
func NewEngine(ledger Ledger, catalog Catalog) *Engine {
    if ledger == nil || catalog == nil {
        panic("nil dependency passed to NewEngine")
    }
    return &Engine{ledger: ledger, catalog: catalog}
}

// Reserve validates a booking request and, when it passes, delegates
// to the ledger's atomic TryConfirm.  The validation order is fixed
// so each rejection has one stable reason:
//
//  1. missing user          → ErrUnauthenticated
//  2. empty seat list       → ErrNoSeatsSelected
//  3. more than the cap     → ErrTooManySeats
//  4. seat out of range     → *InvalidSeatError
//  5. seat repeated         → *InvalidSeatError
//
// A ledger conflict surfaces as *SeatAlreadyBookedError; any other
// ledger failure as *StorageError.  Conflicts are terminal for this
// request; the caller may resubmit with a different seat set.
func (e *Engine) Reserve(ctx context.Context, userID, tripID uint64, seats []int) (*Batch, error) {
    if userID == 0 {
        return nil, ErrUnauthenticated
    }
    if len(seats) == 0 {
        return nil, ErrNoSeatsSelected
    }
    if len(seats) > MaxSeatsPerBooking {
        return nil, ErrTooManySeats
    }
    seen := make(map[int]struct{}, len(seats))
    for _, s := range seats {
        if s < 1 || s > model.TripCapacity {
            return nil, &InvalidSeatError{Seat: s}
        }
        if _, dup := seen[s]; dup {
            return nil, &InvalidSeatError{Seat: s}
        }
        seen[s] = struct{}{}
    }
    batch, err := e.ledger.TryConfirm(ctx, tripID, seats, userID)
    if err != nil {
        var conflict *ConflictError
        if errors.As(err, &conflict) {
            return nil, &SeatAlreadyBookedError{Seat: conflict.Seat}
        }
        return nil, &StorageError{Err: err}
    }
    return batch, nil
}

// OccupiedSeats reports the confirmed seat numbers for a trip.
func (e *Engine) OccupiedSeats(ctx context.Context, tripID uint64) ([]int, error) {
    seats, err := e.ledger.OccupiedSeats(ctx, tripID)
    if err != nil {
        return nil, &StorageError{Err: err}
    }
    return seats, nil
}

// ReservationsFor produces the read-only history projection: the
// user's confirmed reservations joined to their trips, newest first.
// Trip lookups are memoized per call since a batch of seats shares
// one trip.
func (e *Engine) ReservationsFor(ctx context.Context, userID uint64) ([]HistoryEntry, error) {
    rows, err := e.ledger.ReservationsFor(ctx, userID)
    if err != nil {
        return nil, &StorageError{Err: err}
    }
    trips := make(map[uint64]model.Trip)
    entries := make([]HistoryEntry, 0, len(rows))
    for _, r := range rows {
        trip, ok := trips[r.TripID]
        if !ok {
            trip, err = e.catalog.GetByID(ctx, r.TripID)
            if err != nil {
                return nil, &StorageError{Err: err}
            }
            trips[r.TripID] = trip
        }
        entries = append(entries, HistoryEntry{Reservation: r, Trip: trip})
    }
    return entries, nil
}
