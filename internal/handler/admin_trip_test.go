package handler_test

import (
    "context"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/bus-trip-reservation/internal/handler"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// fakeTripStore records created trips and assigns ids.
type fakeTripStore struct {
    created []model.Trip
}

func (s *fakeTripStore) Create(_ context.Context, t *model.Trip) error {
    t.ID = uint64(len(s.created) + 1)
    s.created = append(s.created, *t)
    return nil
}

func (s *fakeTripStore) CreateBulk(_ context.Context, trips []model.Trip) (int, error) {
    s.created = append(s.created, trips...)
    return len(trips), nil
}

func postJSON(t *testing.T, body string) (echo.Context, *httptest.ResponseRecorder) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
    req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
    rec := httptest.NewRecorder()
    return e.NewContext(req, rec), rec
}

func TestCreateTrip(t *testing.T) {
    t.Run("creates a valid trip", func(t *testing.T) {
        store := &fakeTripStore{}
        h := handler.NewAdminTripHandler(store)
        c, rec := postJSON(t, `{"origin":"Tehran","destination":"Tabriz","departure_date":"2026-11-01","price_cents":60000}`)
        require.NoError(t, h.CreateTrip(c))
        require.Equal(t, http.StatusCreated, rec.Code)
        require.Len(t, store.created, 1)
        assert.Equal(t, "Tehran", store.created[0].Origin)
        assert.Contains(t, rec.Body.String(), `"capacity":18`)
    })

    t.Run("rejects same origin and destination", func(t *testing.T) {
        h := handler.NewAdminTripHandler(&fakeTripStore{})
        c, rec := postJSON(t, `{"origin":"Tehran","destination":"tehran","departure_date":"2026-11-01"}`)
        require.NoError(t, h.CreateTrip(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })

    t.Run("rejects a malformed date", func(t *testing.T) {
        h := handler.NewAdminTripHandler(&fakeTripStore{})
        c, rec := postJSON(t, `{"origin":"A","destination":"B","departure_date":"01.11.2026"}`)
        require.NoError(t, h.CreateTrip(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })
}

func TestImportTrips(t *testing.T) {
    t.Run("imports all rows", func(t *testing.T) {
        store := &fakeTripStore{}
        h := handler.NewAdminTripHandler(store)
        c, rec := postJSON(t, `{"trips":[
            {"origin":"Tehran","destination":"Mashhad","departure_date":"2026-11-05","price_cents":70000},
            {"origin":"Mashhad","destination":"Tehran","departure_date":"2026-11-06","price_cents":70000}
        ]}`)
        require.NoError(t, h.ImportTrips(c))
        require.Equal(t, http.StatusCreated, rec.Code)
        assert.Contains(t, rec.Body.String(), `"imported":2`)
        assert.Len(t, store.created, 2)
    })

    t.Run("one bad row fails the whole import with its index", func(t *testing.T) {
        store := &fakeTripStore{}
        h := handler.NewAdminTripHandler(store)
        c, rec := postJSON(t, `{"trips":[
            {"origin":"Tehran","destination":"Mashhad","departure_date":"2026-11-05"},
            {"origin":"","destination":"Tehran","departure_date":"2026-11-06"}
        ]}`)
        require.NoError(t, h.ImportTrips(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code)
        assert.Contains(t, rec.Body.String(), `"index":1`)
        assert.Empty(t, store.created)
    })

    t.Run("empty list rejected", func(t *testing.T) {
        h := handler.NewAdminTripHandler(&fakeTripStore{})
        c, rec := postJSON(t, `{"trips":[]}`)
        require.NoError(t, h.ImportTrips(c))
        assert.Equal(t, http.StatusBadRequest, rec.Code)
    })
}
