package handler_test

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/handler"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

func newTripHandler() (*handler.TripHandler, *booking.MemoryLedger, *fakeCatalog) {
    catalog := &fakeCatalog{trips: map[uint64]model.Trip{
        1: {
            ID:            1,
            Origin:        "Tehran",
            Destination:   "Shiraz",
            DepartureDate: time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC),
            PriceCents:    52000,
        },
    }}
    ledger := booking.NewMemoryLedger()
    engine := booking.NewEngine(ledger, catalog)
    return handler.NewTripHandler(catalog, engine, ledger), ledger, catalog
}

func getRequest(t *testing.T, target string, paramID string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, target, nil)
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    if paramID != "" {
        c.SetParamNames("id")
        c.SetParamValues(paramID)
    }
    return c, rec
}

func TestSearchTrips(t *testing.T) {
    h, _, _ := newTripHandler()

    t.Run("matches case-insensitively", func(t *testing.T) {
        c, rec := getRequest(t, "/v1/trips/search?origin=tehran&destination=SHIRAZ&date=2026-10-02", "")
        require.NoError(t, h.SearchTrips(c))
        require.Equal(t, http.StatusOK, rec.Code)

        var resp struct {
            Data []struct {
                ID       uint64 `json:"id"`
                Capacity int    `json:"capacity"`
            } `json:"data"`
            Total int `json:"total"`
        }
        require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
        require.Equal(t, 1, resp.Total)
        assert.Equal(t, uint64(1), resp.Data[0].ID)
        assert.Equal(t, model.TripCapacity, resp.Data[0].Capacity)
    })

    t.Run("no match is an empty list, not an error", func(t *testing.T) {
        c, rec := getRequest(t, "/v1/trips/search?origin=Tehran&destination=Shiraz&date=2026-10-03", "")
        require.NoError(t, h.SearchTrips(c))
        require.Equal(t, http.StatusOK, rec.Code)
        assert.Contains(t, rec.Body.String(), `"total":0`)
    })

    t.Run("missing parameters rejected", func(t *testing.T) {
        c, rec := getRequest(t, "/v1/trips/search?origin=Tehran", "")
        require.NoError(t, h.SearchTrips(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })

    t.Run("bad date rejected", func(t *testing.T) {
        c, rec := getRequest(t, "/v1/trips/search?origin=a&destination=b&date=tomorrow", "")
        require.NoError(t, h.SearchTrips(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })
}

func TestGetTrip(t *testing.T) {
    h, _, _ := newTripHandler()

    c, rec := getRequest(t, "/v1/trips/1", "1")
    require.NoError(t, h.GetTrip(c))
    require.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"origin":"Tehran"`)

    c2, rec2 := getRequest(t, "/v1/trips/99", "99")
    require.NoError(t, h.GetTrip(c2))
    assert.Equal(t, http.StatusNotFound, rec2.Code)

    c3, rec3 := getRequest(t, "/v1/trips/abc", "abc")
    require.NoError(t, h.GetTrip(c3))
    assert.Equal(t, http.StatusBadRequest, rec3.Code)
}

func TestGetTripSeats(t *testing.T) {
    h, ledger, _ := newTripHandler()

    _, err := ledger.TryConfirm(context.Background(), 1, []int{4, 5}, 10)
    require.NoError(t, err)
    _, err = ledger.HoldSeats(context.Background(), 1, []int{9}, 11, time.Now().UTC().Add(time.Minute))
    require.NoError(t, err)

    c, rec := getRequest(t, "/v1/trips/1/seats", "1")
    require.NoError(t, h.GetTripSeats(c))
    require.Equal(t, http.StatusOK, rec.Code)

    var resp struct {
        Capacity int   `json:"capacity"`
        Occupied []int `json:"occupied"`
        Held     []int `json:"held"`
        Free     []int `json:"free"`
    }
    require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
    assert.Equal(t, model.TripCapacity, resp.Capacity)
    assert.Equal(t, []int{4, 5}, resp.Occupied)
    assert.Equal(t, []int{9}, resp.Held)
    assert.Len(t, resp.Free, model.TripCapacity-3)
    assert.NotContains(t, resp.Free, 4)
    assert.NotContains(t, resp.Free, 9)
}
