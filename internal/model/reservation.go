package model

import "time"

// ReservationConfirmed is the status of every row written by the seat
// ledger.  Only confirmed rows participate in the seat-uniqueness
// invariant; the schema enforces at most one confirmed row per
// (trip, seat).
const ReservationConfirmed = "CONFIRMED"

// Reservation records one confirmed seat on one trip for one user.
// A booking request for several seats produces several rows created
// as a single atomic unit.  Confirmed rows are append-only history:
// the engine never updates or deletes them.  A cancellation flow, if
// ever added, must insert a compensating record instead of mutating
// the original.
//
// Fields:
//  ID         – primary key identifier.
//  TripID     – trip on which the seat is booked.
//  UserID     – user who booked the seat.
//  SeatNumber – seat number in [1, TripCapacity].
//  Status     – reservation state; currently always CONFIRMED.
//  CreatedAt  – when the seat was confirmed.
type Reservation struct {
    ID         uint64    // reservations.id
    TripID     uint64    // reservations.trip_id
    UserID     uint64    // reservations.user_id
    SeatNumber int       // reservations.seat_number
    Status     string    // reservations.status
    CreatedAt  time.Time // reservations.created_at
}
