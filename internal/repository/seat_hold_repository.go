package repository

import (
    "context"
    "database/sql"
    "sort"
    "strings"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// SeatHoldRepo provides data access to the seat_holds table.  Holds
// are short-lived claims a customer takes while deciding; they are
// purged lazily whenever a hold or confirm touches the same trip.
// All expiry comparisons happen in UTC.
type SeatHoldRepo struct {
    db *sql.DB
}

// NewSeatHoldRepo returns a new SeatHoldRepo bound to the provided database.
func NewSeatHoldRepo(db *sql.DB) *SeatHoldRepo { return &SeatHoldRepo{db: db} }

const holdTimeFormat = "2006-01-02 15:04:05"

// HoldSeats places a hold on every requested seat for the user, as
// one indivisible unit.  A seat already confirmed, or held by a
// different user, fails the whole request with *booking.ConflictError
// naming the lowest conflicting seat.  Each hold gets its own UUID
// token.  The uniqueness constraint on seat_holds (trip_id,
// seat_number) backstops the check against concurrent holders.
func (r *SeatHoldRepo) HoldSeats(ctx context.Context, tripID uint64, seats []int, userID uint64, expiresAt time.Time) ([]model.SeatHold, error) {
    ordered := append([]int(nil), seats...)
    sort.Ints(ordered)

    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE trip_id = ? AND expires_at <= UTC_TIMESTAMP()`,
        tripID,
    ); err != nil {
        return nil, err
    }

    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ordered)), ",")
    args := make([]interface{}, 0, len(ordered)+1)
    args = append(args, tripID)
    for _, s := range ordered {
        args = append(args, s)
    }

    confQ := `SELECT seat_number FROM reservations
              WHERE trip_id = ? AND seat_number IN (` + placeholders + `) AND status = 'CONFIRMED'
              ORDER BY seat_number LIMIT 1 FOR UPDATE`
    var taken int
    err = tx.QueryRowContext(ctx, confQ, args...).Scan(&taken)
    switch {
    case err == nil:
        return nil, &booking.ConflictError{Seat: taken}
    case err != sql.ErrNoRows:
        return nil, err
    }

    heldQ := `SELECT seat_number FROM seat_holds
              WHERE trip_id = ? AND seat_number IN (` + placeholders + `) AND user_id <> ?
              ORDER BY seat_number LIMIT 1`
    var held int
    err = tx.QueryRowContext(ctx, heldQ, append(append([]interface{}{}, args...), userID)...).Scan(&held)
    switch {
    case err == nil:
        return nil, &booking.ConflictError{Seat: held}
    case err != sql.ErrNoRows:
        return nil, err
    }

    // Re-holding one's own seats refreshes the expiry.
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE trip_id = ? AND seat_number IN (`+placeholders+`) AND user_id = ?`,
        append(append([]interface{}{}, args...), userID)...,
    ); err != nil {
        return nil, err
    }

    holds := make([]model.SeatHold, 0, len(ordered))
    const ins = `INSERT INTO seat_holds (user_id, trip_id, seat_number, hold_token, expires_at) VALUES (?, ?, ?, ?, ?)`
    for _, s := range ordered {
        h := model.SeatHold{
            UserID:     userID,
            TripID:     tripID,
            SeatNumber: s,
            HoldToken:  uuid.NewString(),
            ExpiresAt:  expiresAt.UTC(),
        }
        res, err := tx.ExecContext(ctx, ins, h.UserID, h.TripID, h.SeatNumber, h.HoldToken, h.ExpiresAt.Format(holdTimeFormat))
        if err != nil {
            if isDuplicateKey(err) {
                return nil, &booking.ConflictError{Seat: s}
            }
            return nil, err
        }
        id, err := res.LastInsertId()
        if err != nil {
            return nil, err
        }
        h.ID = uint64(id)
        holds = append(holds, h)
    }

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return holds, nil
}

// ReleaseHolds removes all of the user's holds on the trip and
// returns the freed seat numbers.
func (r *SeatHoldRepo) ReleaseHolds(ctx context.Context, tripID, userID uint64) ([]int, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    rows, err := tx.QueryContext(ctx,
        `SELECT seat_number FROM seat_holds WHERE trip_id = ? AND user_id = ? ORDER BY seat_number`,
        tripID, userID,
    )
    if err != nil {
        return nil, err
    }
    freed := make([]int, 0)
    for rows.Next() {
        var s int
        if scanErr := rows.Scan(&s); scanErr != nil {
            rows.Close()
            return nil, scanErr
        }
        freed = append(freed, s)
    }
    if err := rows.Close(); err != nil {
        return nil, err
    }

    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE trip_id = ? AND user_id = ?`,
        tripID, userID,
    ); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return freed, nil
}

// HeldSeats returns seat numbers with an unexpired hold on the trip,
// sorted ascending.
func (r *SeatHoldRepo) HeldSeats(ctx context.Context, tripID uint64) ([]int, error) {
    const q = `SELECT seat_number FROM seat_holds
               WHERE trip_id = ? AND expires_at > UTC_TIMESTAMP()
               ORDER BY seat_number`
    rows, err := r.db.QueryContext(ctx, q, tripID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    seats := make([]int, 0)
    for rows.Next() {
        var s int
        if err := rows.Scan(&s); err != nil {
            return nil, err
        }
        seats = append(seats, s)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return seats, nil
}
