package model

import "time"

// TripCapacity is the number of seats on every vehicle in the fleet.
// Capacity is uniform across trips and is not stored per row; seat
// numbers are always in [1, TripCapacity].
const TripCapacity = 18

// Trip represents a scheduled departure between two named locations
// on a given calendar date.  Trips are immutable after creation and
// are only ever inserted by the seeding/import endpoints.
//
// Fields:
//  ID            – primary key identifier.
//  Origin        – departure location name.
//  Destination   – arrival location name.
//  DepartureDate – calendar date of departure (no time component,
//                  stored as a DATE column, handled in UTC).
//  PriceCents    – ticket price in integer currency units.
//  CreatedAt     – creation timestamp.
type Trip struct {
    ID            uint64    // trips.id
    Origin        string    // trips.origin
    Destination   string    // trips.destination
    DepartureDate time.Time // trips.departure_date
    PriceCents    uint32    // trips.price_cents
    CreatedAt     time.Time // trips.created_at
}
