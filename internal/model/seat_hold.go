package model

import "time"

// SeatHold represents a temporary claim on a seat while a user works
// through checkout.  A held seat is treated as a conflict by the seat
// ledger when someone else tries to confirm it.  Holds expire at
// ExpiresAt and are purged lazily inside the confirm transaction.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – user who holds the seat.
//  TripID     – trip for which the seat is held.
//  SeatNumber – seat number being held.
//  HoldToken  – opaque token returned to the client for reference.
//  ExpiresAt  – when the hold lapses.
//  CreatedAt  – when the hold was created.
type SeatHold struct {
    ID         uint64    // seat_holds.id
    UserID     uint64    // seat_holds.user_id
    TripID     uint64    // seat_holds.trip_id
    SeatNumber int       // seat_holds.seat_number
    HoldToken  string    // seat_holds.hold_token
    ExpiresAt  time.Time // seat_holds.expires_at
    CreatedAt  time.Time // seat_holds.created_at
}
