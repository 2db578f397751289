// Package queue defines message payloads exchanged over the message broker.
package queue

// ReservationConfirmedEvent is published when a booking is successfully
// confirmed.  It carries enough for downstream consumers to log, notify
// or feed analytics without querying the primary database.  One event
// covers the whole batch; SeatNumbers lists every seat it confirmed.
type ReservationConfirmedEvent struct {
    ReservationIDs   []uint64 `json:"reservation_ids"`
    UserID           uint64   `json:"user_id"`
    TripID           uint64   `json:"trip_id"`
    Origin           string   `json:"origin"`
    Destination      string   `json:"destination"`
    DepartureDate    string   `json:"departure_date"`
    SeatNumbers      []int    `json:"seat_numbers"`
    TotalAmountCents uint32   `json:"total_amount_cents"`
    ConfirmedAt      string   `json:"confirmed_at"`
}
