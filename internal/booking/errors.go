// Package booking implements the seat reservation engine: request
// validation, the seat ledger contract and the atomic confirm path
// that guarantees no two confirmed reservations ever claim the same
// (trip, seat) pair.
package booking

import (
    "errors"
    "fmt"
)

// Sentinel rejections for malformed booking requests.  All are
// terminal for the current request; nothing in this package retries.
var (
    // ErrUnauthenticated is returned when no user identifier was
    // supplied with the request.
    ErrUnauthenticated = errors.New("unauthenticated")
    // ErrNoSeatsSelected is returned when the request contains an
    // empty seat list.
    ErrNoSeatsSelected = errors.New("no seats selected")
    // ErrTooManySeats is returned when the request asks for more
    // than MaxSeatsPerBooking seats.
    ErrTooManySeats = errors.New("too many seats")
)

// InvalidSeatError reports a seat number outside [1, TripCapacity]
// or one repeated within the same request.
type InvalidSeatError struct {
    Seat int
}

func (e *InvalidSeatError) Error() string {
    return fmt.Sprintf("invalid seat number %d", e.Seat)
}

// ConflictError is returned by a Ledger when a requested seat is
// already confirmed, or held by a different user.  When several
// requested seats conflict, the lowest-numbered one is reported.
type ConflictError struct {
    Seat int
}

func (e *ConflictError) Error() string {
    return fmt.Sprintf("seat %d is not available", e.Seat)
}

// SeatAlreadyBookedError is the engine-level form of a ledger
// conflict.  Handlers surface the seat so clients can highlight
// exactly which seat to deselect.
type SeatAlreadyBookedError struct {
    Seat int
}

func (e *SeatAlreadyBookedError) Error() string {
    return fmt.Sprintf("seat %d is already booked", e.Seat)
}

// StorageError wraps an infrastructure failure from the ledger or
// the trip catalog.  It is the only error kind a caller might
// reasonably retry, with backoff, outside this package.
type StorageError struct {
    Err error
}

func (e *StorageError) Error() string {
    return "storage unavailable: " + e.Err.Error()
}

func (e *StorageError) Unwrap() error { return e.Err }
