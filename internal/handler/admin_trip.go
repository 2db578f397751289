package handler

import (
    "context"
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/model"
)

// TripStore is the write side of the trip catalog, used only by the
// admin seeding endpoints.  Trips are immutable once created, so there
// is no update or delete.
type TripStore interface {
    Create(ctx context.Context, t *model.Trip) error
    CreateBulk(ctx context.Context, trips []model.Trip) (int, error)
}

// AdminTripHandler serves the trip seeding endpoints behind the ADMIN
// role guard.
type AdminTripHandler struct {
    Trips TripStore
}

func NewAdminTripHandler(trips TripStore) *AdminTripHandler {
    return &AdminTripHandler{Trips: trips}
}

type tripReq struct {
    Origin        string `json:"origin"`
    Destination   string `json:"destination"`
    DepartureDate string `json:"departure_date"` // YYYY-MM-DD
    PriceCents    uint32 `json:"price_cents"`
}

// parse validates a tripReq and converts it to a model.Trip.
func (r tripReq) parse() (model.Trip, string) {
    origin := strings.TrimSpace(r.Origin)
    destination := strings.TrimSpace(r.Destination)
    if origin == "" || destination == "" {
        return model.Trip{}, "origin and destination are required"
    }
    if strings.EqualFold(origin, destination) {
        return model.Trip{}, "origin and destination must differ"
    }
    date, err := time.Parse("2006-01-02", strings.TrimSpace(r.DepartureDate))
    if err != nil {
        return model.Trip{}, "departure_date must be YYYY-MM-DD"
    }
    return model.Trip{
        Origin:        origin,
        Destination:   destination,
        DepartureDate: date,
        PriceCents:    r.PriceCents,
    }, ""
}

// CreateTrip adds one trip to the catalog.
func (h *AdminTripHandler) CreateTrip(c echo.Context) error {
    var req tripReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    trip, msg := req.parse()
    if msg != "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
    defer cancel()

    if err := h.Trips.Create(ctx, &trip); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create trip failed"})
    }
    return c.JSON(http.StatusCreated, toTripView(trip))
}

type importReq struct {
    Trips []tripReq `json:"trips"`
}

// ImportTrips bulk-creates trips in one transaction.  Either every
// row is imported or none are; the first bad row names its position.
func (h *AdminTripHandler) ImportTrips(c echo.Context) error {
    var req importReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.Trips) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "trips required"})
    }

    rows := make([]model.Trip, 0, len(req.Trips))
    for i, r := range req.Trips {
        trip, msg := r.parse()
        if msg != "" {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "index": i})
        }
        rows = append(rows, trip)
    }

    ctx, cancel := context.WithTimeout(c.Request().Context(), 15*time.Second)
    defer cancel()

    n, err := h.Trips.CreateBulk(ctx, rows)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "import failed"})
    }
    return c.JSON(http.StatusCreated, echo.Map{"imported": n})
}
