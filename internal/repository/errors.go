// Package repository defines error types that are reused across
// multiple repositories.  These sentinel values allow higher layers
// such as handlers to distinguish failure scenarios without string
// matching.  Seat conflicts are not defined here: the seat ledger
// reports them as *booking.ConflictError so the engine and the
// handlers share one conflict type.
package repository

import "errors"

// ErrTripNotFound indicates that a trip was not located in the DB.
var ErrTripNotFound = errors.New("trip not found")
