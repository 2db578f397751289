package repository

import (
    "context"
    "database/sql"
    "time"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// TripRepo is the trip catalog: a read-mostly store of scheduled
// departures.  Trips are inserted only by the seeding endpoints and
// never updated or deleted afterwards, so there is no update path
// here.
type TripRepo struct {
    db *sql.DB
}

// NewTripRepo returns a new TripRepo bound to the given database.
func NewTripRepo(db *sql.DB) *TripRepo { return &TripRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need to begin
// transactions spanning multiple repositories.
func (r *TripRepo) DB() *sql.DB { return r.db }

// dateFormat is how departure_date is sent to the DATE column.
const dateFormat = "2006-01-02"

// Create inserts a single trip and populates its generated ID and
// creation timestamp.
func (r *TripRepo) Create(ctx context.Context, t *model.Trip) error {
    const q = `INSERT INTO trips (origin, destination, departure_date, price_cents) VALUES (?, ?, ?, ?)`
    res, err := r.db.ExecContext(ctx, q, t.Origin, t.Destination, t.DepartureDate.UTC().Format(dateFormat), t.PriceCents)
    if err != nil {
        return err
    }
    id, err := res.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    const sel = `SELECT created_at FROM trips WHERE id = ?`
    return r.db.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt)
}

// CreateBulk inserts many trips inside one transaction and returns
// the number inserted.  Either every trip is created or none are.
func (r *TripRepo) CreateBulk(ctx context.Context, trips []model.Trip) (int, error) {
    if len(trips) == 0 {
        return 0, nil
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()
    const q = `INSERT INTO trips (origin, destination, departure_date, price_cents) VALUES (?, ?, ?, ?)`
    for _, t := range trips {
        if _, err := tx.ExecContext(ctx, q, t.Origin, t.Destination, t.DepartureDate.UTC().Format(dateFormat), t.PriceCents); err != nil {
            return 0, err
        }
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return len(trips), nil
}

// GetByID fetches a trip by id.  ErrTripNotFound is returned when no
// row exists.
func (r *TripRepo) GetByID(ctx context.Context, id uint64) (model.Trip, error) {
    const q = `SELECT id, origin, destination, departure_date, price_cents, created_at FROM trips WHERE id = ?`
    var t model.Trip
    err := r.db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Origin, &t.Destination, &t.DepartureDate, &t.PriceCents, &t.CreatedAt)
    if err == sql.ErrNoRows {
        return model.Trip{}, ErrTripNotFound
    }
    if err != nil {
        return model.Trip{}, err
    }
    return t, nil
}

// Search returns trips matching origin, destination and departure
// date by exact (case-insensitive) equality.  Results are ordered by
// id so repeated searches are reproducible.
func (r *TripRepo) Search(ctx context.Context, origin, destination string, date time.Time) ([]model.Trip, error) {
    const q = `SELECT id, origin, destination, departure_date, price_cents, created_at
               FROM trips
               WHERE LOWER(origin) = LOWER(?) AND LOWER(destination) = LOWER(?) AND departure_date = ?
               ORDER BY id`
    rows, err := r.db.QueryContext(ctx, q, origin, destination, date.UTC().Format(dateFormat))
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    out := make([]model.Trip, 0)
    for rows.Next() {
        var t model.Trip
        if err := rows.Scan(&t.ID, &t.Origin, &t.Destination, &t.DepartureDate, &t.PriceCents, &t.CreatedAt); err != nil {
            return nil, err
        }
        out = append(out, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
