package booking

import (
    "context"
    "sort"
    "sync"
    "sync/atomic"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// MemoryLedger is an in-process Ledger and HoldStore.  Each trip has
// its own mutex, which is the per-trip claim: TryConfirm for one
// trip blocks concurrent TryConfirm calls for the same trip and
// nothing else.  It backs the test harness and local development
// without a database; the MySQL ledger in the repository package is
// the production implementation.
type MemoryLedger struct {
    mu     sync.Mutex // guards the trips map, never held across a trip lock
    trips  map[uint64]*tripState
    nextID atomic.Uint64
}

type tripState struct {
    mu        sync.Mutex
    confirmed map[int]model.Reservation // seat number -> reservation
    holds     map[int]model.SeatHold    // seat number -> active hold
}

// NewMemoryLedger returns an empty ledger.
func NewMemoryLedger() *MemoryLedger {
    return &MemoryLedger{trips: make(map[uint64]*tripState)}
}

func (l *MemoryLedger) state(tripID uint64) *tripState {
    l.mu.Lock()
    defer l.mu.Unlock()
    st, ok := l.trips[tripID]
    if !ok {
        st = &tripState{
            confirmed: make(map[int]model.Reservation),
            holds:     make(map[int]model.SeatHold),
        }
        l.trips[tripID] = st
    }
    return st
}

// purgeExpiredLocked drops lapsed holds.  Callers hold st.mu.
func (st *tripState) purgeExpiredLocked(now time.Time) {
    for seat, h := range st.holds {
        if !h.ExpiresAt.After(now) {
            delete(st.holds, seat)
        }
    }
}

// OccupiedSeats returns the confirmed seat numbers sorted ascending.
func (l *MemoryLedger) OccupiedSeats(_ context.Context, tripID uint64) ([]int, error) {
    st := l.state(tripID)
    st.mu.Lock()
    defer st.mu.Unlock()
    seats := make([]int, 0, len(st.confirmed))
    for s := range st.confirmed {
        seats = append(seats, s)
    }
    sort.Ints(seats)
    return seats, nil
}

// TryConfirm takes the trip's claim, checks every requested seat
// against the confirmed set and foreign holds, and either inserts
// the whole batch or inserts nothing.  The lowest-numbered
// conflicting seat is reported.
func (l *MemoryLedger) TryConfirm(_ context.Context, tripID uint64, seats []int, userID uint64) (*Batch, error) {
    st := l.state(tripID)
    st.mu.Lock()
    defer st.mu.Unlock()

    now := time.Now().UTC()
    st.purgeExpiredLocked(now)

    ordered := append([]int(nil), seats...)
    sort.Ints(ordered)
    for _, s := range ordered {
        if _, taken := st.confirmed[s]; taken {
            return nil, &ConflictError{Seat: s}
        }
        if h, held := st.holds[s]; held && h.UserID != userID {
            return nil, &ConflictError{Seat: s}
        }
    }

    batch := &Batch{
        ReservationIDs: make([]uint64, 0, len(ordered)),
        TripID:         tripID,
        UserID:         userID,
        SeatNumbers:    ordered,
        CreatedAt:      now,
    }
    for _, s := range ordered {
        id := l.nextID.Add(1)
        st.confirmed[s] = model.Reservation{
            ID:         id,
            TripID:     tripID,
            UserID:     userID,
            SeatNumber: s,
            Status:     model.ReservationConfirmed,
            CreatedAt:  now,
        }
        delete(st.holds, s)
        batch.ReservationIDs = append(batch.ReservationIDs, id)
    }
    return batch, nil
}

// ReservationsFor collects the user's confirmed seats across all
// trips, newest first.  Rows confirmed in the same batch share a
// timestamp and fall back to id order.
func (l *MemoryLedger) ReservationsFor(_ context.Context, userID uint64) ([]model.Reservation, error) {
    l.mu.Lock()
    states := make([]*tripState, 0, len(l.trips))
    for _, st := range l.trips {
        states = append(states, st)
    }
    l.mu.Unlock()

    var rows []model.Reservation
    for _, st := range states {
        st.mu.Lock()
        for _, r := range st.confirmed {
            if r.UserID == userID {
                rows = append(rows, r)
            }
        }
        st.mu.Unlock()
    }
    sort.Slice(rows, func(i, j int) bool {
        if !rows[i].CreatedAt.Equal(rows[j].CreatedAt) {
            return rows[i].CreatedAt.After(rows[j].CreatedAt)
        }
        return rows[i].ID < rows[j].ID
    })
    return rows, nil
}

// HoldSeats parks the given seats for the user until expiresAt.  A
// seat already confirmed, or held by someone else, fails the whole
// request with a *ConflictError and no holds are written.
func (l *MemoryLedger) HoldSeats(_ context.Context, tripID uint64, seats []int, userID uint64, expiresAt time.Time) ([]model.SeatHold, error) {
    st := l.state(tripID)
    st.mu.Lock()
    defer st.mu.Unlock()

    now := time.Now().UTC()
    st.purgeExpiredLocked(now)

    ordered := append([]int(nil), seats...)
    sort.Ints(ordered)
    for _, s := range ordered {
        if _, taken := st.confirmed[s]; taken {
            return nil, &ConflictError{Seat: s}
        }
        if h, held := st.holds[s]; held && h.UserID != userID {
            return nil, &ConflictError{Seat: s}
        }
    }

    holds := make([]model.SeatHold, 0, len(ordered))
    for _, s := range ordered {
        h := model.SeatHold{
            ID:         l.nextID.Add(1),
            UserID:     userID,
            TripID:     tripID,
            SeatNumber: s,
            HoldToken:  uuid.NewString(),
            ExpiresAt:  expiresAt,
            CreatedAt:  now,
        }
        st.holds[s] = h
        holds = append(holds, h)
    }
    return holds, nil
}

// ReleaseHolds drops all of the user's holds on a trip and returns
// the freed seat numbers.
func (l *MemoryLedger) ReleaseHolds(_ context.Context, tripID, userID uint64) ([]int, error) {
    st := l.state(tripID)
    st.mu.Lock()
    defer st.mu.Unlock()

    var freed []int
    for s, h := range st.holds {
        if h.UserID == userID {
            delete(st.holds, s)
            freed = append(freed, s)
        }
    }
    sort.Ints(freed)
    return freed, nil
}

// HeldSeats returns seat numbers with an unexpired hold, sorted.
func (l *MemoryLedger) HeldSeats(_ context.Context, tripID uint64) ([]int, error) {
    st := l.state(tripID)
    st.mu.Lock()
    defer st.mu.Unlock()

    st.purgeExpiredLocked(time.Now().UTC())
    seats := make([]int, 0, len(st.holds))
    for s := range st.holds {
        seats = append(seats, s)
    }
    sort.Ints(seats)
    return seats, nil
}
