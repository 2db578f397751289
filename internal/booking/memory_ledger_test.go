package booking_test

import (
    "context"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

func TestMemoryLedger_OccupiedSeatsIsIdempotent(t *testing.T) {
    ctx := context.Background()
    ledger := booking.NewMemoryLedger()

    _, err := ledger.TryConfirm(ctx, 1, []int{2, 11}, 7)
    require.NoError(t, err)

    first, err := ledger.OccupiedSeats(ctx, 1)
    require.NoError(t, err)
    second, err := ledger.OccupiedSeats(ctx, 1)
    require.NoError(t, err)

    assert.Equal(t, []int{2, 11}, first)
    assert.Equal(t, first, second, "reads without intervening writes return identical sets")
}

func TestMemoryLedger_ConflictNamesLowestSeat(t *testing.T) {
    ctx := context.Background()
    ledger := booking.NewMemoryLedger()

    _, err := ledger.TryConfirm(ctx, 1, []int{2, 5}, 7)
    require.NoError(t, err)

    _, err = ledger.TryConfirm(ctx, 1, []int{5, 2}, 8)
    var conflict *booking.ConflictError
    require.ErrorAs(t, err, &conflict)
    assert.Equal(t, 2, conflict.Seat)
}

func TestMemoryLedger_BatchRowsShareCreation(t *testing.T) {
    ctx := context.Background()
    ledger := booking.NewMemoryLedger()

    batch, err := ledger.TryConfirm(ctx, 3, []int{6, 1}, 9)
    require.NoError(t, err)
    assert.Equal(t, []int{1, 6}, batch.SeatNumbers, "seats are reported sorted")
    require.Len(t, batch.ReservationIDs, 2)

    rows, err := ledger.ReservationsFor(ctx, 9)
    require.NoError(t, err)
    require.Len(t, rows, 2)
    assert.Equal(t, rows[0].CreatedAt, rows[1].CreatedAt)
    for _, r := range rows {
        assert.Equal(t, model.ReservationConfirmed, r.Status)
        assert.Equal(t, uint64(3), r.TripID)
    }
}

func TestMemoryLedger_Holds(t *testing.T) {
    ctx := context.Background()
    ledger := booking.NewMemoryLedger()
    expires := time.Now().UTC().Add(5 * time.Minute)

    t.Run("holding a confirmed seat fails entirely", func(t *testing.T) {
        _, err := ledger.TryConfirm(ctx, 1, []int{4}, 1)
        require.NoError(t, err)

        _, err = ledger.HoldSeats(ctx, 1, []int{3, 4}, 2, expires)
        var conflict *booking.ConflictError
        require.ErrorAs(t, err, &conflict)
        assert.Equal(t, 4, conflict.Seat)

        held, err := ledger.HeldSeats(ctx, 1)
        require.NoError(t, err)
        assert.Empty(t, held, "no partial holds on conflict")
    })

    t.Run("holds carry tokens and show up as held", func(t *testing.T) {
        holds, err := ledger.HoldSeats(ctx, 1, []int{7, 8}, 2, expires)
        require.NoError(t, err)
        require.Len(t, holds, 2)
        for _, h := range holds {
            assert.NotEmpty(t, h.HoldToken)
            assert.Equal(t, uint64(2), h.UserID)
        }

        held, err := ledger.HeldSeats(ctx, 1)
        require.NoError(t, err)
        assert.Equal(t, []int{7, 8}, held)
    })

    t.Run("release frees only the caller's holds", func(t *testing.T) {
        _, err := ledger.HoldSeats(ctx, 1, []int{12}, 3, expires)
        require.NoError(t, err)

        freed, err := ledger.ReleaseHolds(ctx, 1, 2)
        require.NoError(t, err)
        assert.Equal(t, []int{7, 8}, freed)

        held, err := ledger.HeldSeats(ctx, 1)
        require.NoError(t, err)
        assert.Equal(t, []int{12}, held)
    })

    t.Run("expired holds are purged from the held view", func(t *testing.T) {
        _, err := ledger.HoldSeats(ctx, 2, []int{1}, 4, time.Now().UTC().Add(-time.Minute))
        require.NoError(t, err)

        held, err := ledger.HeldSeats(ctx, 2)
        require.NoError(t, err)
        assert.Empty(t, held)
    })
}
