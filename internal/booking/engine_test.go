package booking_test

import (
    "context"
    "errors"
    "sort"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// stubCatalog is a fixed in-memory trip catalog for engine tests.
type stubCatalog struct {
    trips map[uint64]model.Trip
}

func (c stubCatalog) GetByID(_ context.Context, id uint64) (model.Trip, error) {
    t, ok := c.trips[id]
    if !ok {
        return model.Trip{}, errors.New("trip not found")
    }
    return t, nil
}

func (c stubCatalog) Search(_ context.Context, origin, destination string, date time.Time) ([]model.Trip, error) {
    var out []model.Trip
    for _, t := range c.trips {
        if t.Origin == origin && t.Destination == destination && t.DepartureDate.Equal(date) {
            out = append(out, t)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
    return out, nil
}

func newTestEngine() (*booking.Engine, *booking.MemoryLedger) {
    ledger := booking.NewMemoryLedger()
    catalog := stubCatalog{trips: map[uint64]model.Trip{
        1: {ID: 1, Origin: "Hamburg", Destination: "Berlin", PriceCents: 2500},
        2: {ID: 2, Origin: "Berlin", Destination: "Leipzig", PriceCents: 1800},
    }}
    return booking.NewEngine(ledger, catalog), ledger
}

func TestEngine_Reserve_Validation(t *testing.T) {
    ctx := context.Background()
    engine, _ := newTestEngine()

    t.Run("missing user is rejected as unauthenticated", func(t *testing.T) {
        _, err := engine.Reserve(ctx, 0, 1, []int{1})
        assert.ErrorIs(t, err, booking.ErrUnauthenticated)
    })

    t.Run("empty seat list is rejected", func(t *testing.T) {
        _, err := engine.Reserve(ctx, 1, 1, nil)
        assert.ErrorIs(t, err, booking.ErrNoSeatsSelected)
    })

    t.Run("three seats always exceed the cap", func(t *testing.T) {
        _, err := engine.Reserve(ctx, 1, 1, []int{1, 2, 3})
        assert.ErrorIs(t, err, booking.ErrTooManySeats)
    })

    t.Run("seat zero is out of range", func(t *testing.T) {
        _, err := engine.Reserve(ctx, 1, 1, []int{0})
        var invalid *booking.InvalidSeatError
        require.ErrorAs(t, err, &invalid)
        assert.Equal(t, 0, invalid.Seat)
    })

    t.Run("seat above capacity is out of range", func(t *testing.T) {
        _, err := engine.Reserve(ctx, 1, 1, []int{model.TripCapacity + 1})
        var invalid *booking.InvalidSeatError
        require.ErrorAs(t, err, &invalid)
        assert.Equal(t, model.TripCapacity+1, invalid.Seat)
    })

    t.Run("duplicate seats within one request are rejected", func(t *testing.T) {
        _, err := engine.Reserve(ctx, 1, 1, []int{7, 7})
        var invalid *booking.InvalidSeatError
        require.ErrorAs(t, err, &invalid)
        assert.Equal(t, 7, invalid.Seat)
    })

    t.Run("rejected requests leave the ledger untouched", func(t *testing.T) {
        occupied, err := engine.OccupiedSeats(ctx, 1)
        require.NoError(t, err)
        assert.Empty(t, occupied)
    })
}

func TestEngine_Reserve_Scenario(t *testing.T) {
    ctx := context.Background()
    engine, _ := newTestEngine()

    batch, err := engine.Reserve(ctx, 1, 1, []int{5, 6})
    require.NoError(t, err)
    assert.Equal(t, []int{5, 6}, batch.SeatNumbers)
    assert.Equal(t, uint64(1), batch.TripID)
    assert.Len(t, batch.ReservationIDs, 2)

    occupied, err := engine.OccupiedSeats(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, []int{5, 6}, occupied)

    // Overlapping request from a second user names the taken seat and
    // commits nothing, including the free seat 7.
    _, err = engine.Reserve(ctx, 2, 1, []int{6, 7})
    var booked *booking.SeatAlreadyBookedError
    require.ErrorAs(t, err, &booked)
    assert.Equal(t, 6, booked.Seat)

    occupied, err = engine.OccupiedSeats(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, []int{5, 6}, occupied, "failed batch must not be partially committed")
}

func TestEngine_Reserve_MutualExclusion(t *testing.T) {
    ctx := context.Background()
    engine, _ := newTestEngine()

    const callers = 50
    var wg sync.WaitGroup
    errs := make([]error, callers)
    for i := 0; i < callers; i++ {
        wg.Add(1)
        go func(n int) {
            defer wg.Done()
            _, errs[n] = engine.Reserve(ctx, uint64(n+1), 1, []int{1})
        }(i)
    }
    wg.Wait()

    successes := 0
    conflicts := 0
    for _, err := range errs {
        if err == nil {
            successes++
            continue
        }
        var booked *booking.SeatAlreadyBookedError
        require.ErrorAs(t, err, &booked)
        assert.Equal(t, 1, booked.Seat)
        conflicts++
    }
    assert.Equal(t, 1, successes, "exactly one caller may win seat 1")
    assert.Equal(t, callers-1, conflicts)

    occupied, err := engine.OccupiedSeats(ctx, 1)
    require.NoError(t, err)
    assert.Equal(t, []int{1}, occupied)
}

func TestEngine_Reserve_IndependentTripsDoNotContend(t *testing.T) {
    ctx := context.Background()
    engine, _ := newTestEngine()

    const trips = 20
    var wg sync.WaitGroup
    errs := make([]error, trips)
    for i := 0; i < trips; i++ {
        wg.Add(1)
        go func(n int) {
            defer wg.Done()
            _, errs[n] = engine.Reserve(ctx, 1, uint64(n+100), []int{1, 2})
        }(i)
    }
    wg.Wait()

    for _, err := range errs {
        assert.NoError(t, err, "the same seat on different trips never conflicts")
    }
}

func TestEngine_Reserve_Holds(t *testing.T) {
    ctx := context.Background()
    engine, ledger := newTestEngine()

    t.Run("a foreign hold blocks the seat", func(t *testing.T) {
        _, err := ledger.HoldSeats(ctx, 1, []int{9}, 1, time.Now().UTC().Add(5*time.Minute))
        require.NoError(t, err)

        _, err = engine.Reserve(ctx, 2, 1, []int{9})
        var booked *booking.SeatAlreadyBookedError
        require.ErrorAs(t, err, &booked)
        assert.Equal(t, 9, booked.Seat)
    })

    t.Run("the holder can confirm their own hold", func(t *testing.T) {
        batch, err := engine.Reserve(ctx, 1, 1, []int{9})
        require.NoError(t, err)
        assert.Equal(t, []int{9}, batch.SeatNumbers)

        held, err := ledger.HeldSeats(ctx, 1)
        require.NoError(t, err)
        assert.NotContains(t, held, 9, "confirming consumes the hold")
    })

    t.Run("an expired hold no longer blocks anyone", func(t *testing.T) {
        _, err := ledger.HoldSeats(ctx, 1, []int{10}, 1, time.Now().UTC().Add(-time.Second))
        require.NoError(t, err)

        _, err = engine.Reserve(ctx, 2, 1, []int{10})
        require.NoError(t, err)
    })
}

func TestEngine_ReservationsFor(t *testing.T) {
    ctx := context.Background()
    engine, _ := newTestEngine()

    _, err := engine.Reserve(ctx, 1, 1, []int{3, 4})
    require.NoError(t, err)
    time.Sleep(2 * time.Millisecond)
    _, err = engine.Reserve(ctx, 1, 2, []int{1})
    require.NoError(t, err)
    _, err = engine.Reserve(ctx, 2, 1, []int{8})
    require.NoError(t, err)

    entries, err := engine.ReservationsFor(ctx, 1)
    require.NoError(t, err)
    require.Len(t, entries, 3)

    // Newest batch first; seats within the older batch keep id order.
    assert.Equal(t, uint64(2), entries[0].Trip.ID)
    assert.Equal(t, 1, entries[0].Reservation.SeatNumber)
    assert.Equal(t, 3, entries[1].Reservation.SeatNumber)
    assert.Equal(t, 4, entries[2].Reservation.SeatNumber)
    assert.Equal(t, "Hamburg", entries[1].Trip.Origin)

    other, err := engine.ReservationsFor(ctx, 2)
    require.NoError(t, err)
    require.Len(t, other, 1)
    assert.Equal(t, 8, other[0].Reservation.SeatNumber)
}
