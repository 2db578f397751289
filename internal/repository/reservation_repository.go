package repository

import (
    "context"
    "database/sql"
    "sort"
    "strings"
    "time"

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// ReservationRepo is the MySQL-backed seat ledger.  The reservations
// table carries one row per confirmed (trip, seat) pair and a
// uniqueness constraint on (trip_id, seat_number), so the database
// itself refuses a second confirmation of the same seat no matter
// how requests interleave.  Rows are append-only: nothing in this
// repository updates or deletes a confirmed reservation.
type ReservationRepo struct {
    db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying sql.DB for transaction-spanning callers.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// OccupiedSeats returns the confirmed seat numbers for a trip,
// sorted ascending.  Side-effect free.
func (r *ReservationRepo) OccupiedSeats(ctx context.Context, tripID uint64) ([]int, error) {
    const q = `SELECT seat_number FROM reservations
               WHERE trip_id = ? AND status = 'CONFIRMED'
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

// isDuplicateKey reports whether err is a MySQL duplicate-entry
// violation (error 1062), which here means a concurrent request
// confirmed the seat between our check and our insert.
func isDuplicateKey(err error) bool {
    return err != nil && strings.Contains(err.Error(), "1062")
}

// TryConfirm atomically confirms the given seats for the user.  The
// whole call runs in one transaction, which is the per-trip claim:
//
//  1. purge expired holds for the trip;
//  2. lock any confirmed rows for the requested seats
//     (SELECT ... FOR UPDATE) and fail on the lowest one found;
//  3. fail on any requested seat held by a different user;
//  4. insert one reservation row per seat — a duplicate-key error
//     from a concurrent racer is reported as a conflict on that seat;
//  5. consume the user's own holds on those seats.
//
// On any failure the deferred rollback discards every write, so a
// batch either commits whole or not at all.  The row and gap locks
// taken on the (trip_id, seat_number) unique index serialize
// concurrent confirms for the same trip while leaving other trips
// uncontended.
func (r *ReservationRepo) TryConfirm(ctx context.Context, tripID uint64, seats []int, userID uint64) (*booking.Batch, error) {
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
    args := make([]interface{}, 0, len(ordered)+2)
    args = append(args, tripID)
    for _, s := range ordered {
        args = append(args, s)
    }

    lockQ := `SELECT seat_number FROM reservations
              WHERE trip_id = ? AND seat_number IN (` + placeholders + `) AND status = 'CONFIRMED'
              ORDER BY seat_number LIMIT 1 FOR UPDATE`
    var taken int
    err = tx.QueryRowContext(ctx, lockQ, args...).Scan(&taken)
    switch {
    case err == nil:
        return nil, &booking.ConflictError{Seat: taken}
    case err != sql.ErrNoRows:
        return nil, err
    }

    holdQ := `SELECT seat_number FROM seat_holds
              WHERE trip_id = ? AND seat_number IN (` + placeholders + `) AND user_id <> ?
              ORDER BY seat_number LIMIT 1`
    var held int
    err = tx.QueryRowContext(ctx, holdQ, append(append([]interface{}{}, args...), userID)...).Scan(&held)
    switch {
    case err == nil:
        return nil, &booking.ConflictError{Seat: held}
    case err != sql.ErrNoRows:
        return nil, err
    }

    batch := &booking.Batch{
        ReservationIDs: make([]uint64, 0, len(ordered)),
        TripID:         tripID,
        UserID:         userID,
        SeatNumbers:    ordered,
    }
    const ins = `INSERT INTO reservations (trip_id, user_id, seat_number, status) VALUES (?, ?, ?, 'CONFIRMED')`
    for _, s := range ordered {
        res, err := tx.ExecContext(ctx, ins, tripID, userID, s)
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
        batch.ReservationIDs = append(batch.ReservationIDs, uint64(id))
    }

    delArgs := append(append([]interface{}{}, args...), userID)
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM seat_holds WHERE trip_id = ? AND seat_number IN (`+placeholders+`) AND user_id = ?`,
        delArgs...,
    ); err != nil {
        return nil, err
    }

    var createdAt time.Time
    if err := tx.QueryRowContext(ctx,
        `SELECT created_at FROM reservations WHERE id = ?`,
        batch.ReservationIDs[0],
    ).Scan(&createdAt); err != nil {
        return nil, err
    }
    batch.CreatedAt = createdAt.UTC()

    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return batch, nil
}

// ReservationsFor returns the user's confirmed reservations, newest
// first.  Rows confirmed in the same batch share a timestamp and
// fall back to id order so output stays deterministic.
func (r *ReservationRepo) ReservationsFor(ctx context.Context, userID uint64) ([]model.Reservation, error) {
    const q = `SELECT id, trip_id, user_id, seat_number, status, created_at
               FROM reservations
               WHERE user_id = ?
               ORDER BY created_at DESC, id ASC`
    rows, err := r.db.QueryContext(ctx, q, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Reservation, 0)
    for rows.Next() {
        var res model.Reservation
        if err := rows.Scan(&res.ID, &res.TripID, &res.UserID, &res.SeatNumber, &res.Status, &res.CreatedAt); err != nil {
            return nil, err
        }
        res.CreatedAt = res.CreatedAt.UTC()
        out = append(out, res)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
