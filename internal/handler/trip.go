package handler

import (
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/repository"
)

// TripHandler serves public trip browsing: search, detail and the
// seat availability view.  It reads through the booking engine so the
// seat view reflects the same ledger the reserve path writes.
type TripHandler struct {
    Catalog booking.Catalog
    Engine  *booking.Engine
    Holds   booking.HoldStore
}

func NewTripHandler(catalog booking.Catalog, engine *booking.Engine, holds booking.HoldStore) *TripHandler {
    return &TripHandler{Catalog: catalog, Engine: engine, Holds: holds}
}

// tripView is the JSON shape for a trip in list and detail responses.
type tripView struct {
    ID            uint64 `json:"id"`
    Origin        string `json:"origin"`
    Destination   string `json:"destination"`
    DepartureDate string `json:"departure_date"`
    PriceCents    uint32 `json:"price_cents"`
    Capacity      int    `json:"capacity"`
}

func toTripView(t model.Trip) tripView {
    return tripView{
        ID:            t.ID,
        Origin:        t.Origin,
        Destination:   t.Destination,
        DepartureDate: t.DepartureDate.Format("2006-01-02"),
        PriceCents:    t.PriceCents,
        Capacity:      model.TripCapacity,
    }
}

// SearchTrips matches trips by origin, destination and departure date.
// All three parameters are required; matching is exact, case-insensitive
// for the place names.
func (h *TripHandler) SearchTrips(c echo.Context) error {
    origin := strings.TrimSpace(c.QueryParam("origin"))
    destination := strings.TrimSpace(c.QueryParam("destination"))
    dateStr := strings.TrimSpace(c.QueryParam("date"))
    if origin == "" || destination == "" || dateStr == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "origin, destination and date are required"})
    }
    date, err := time.Parse("2006-01-02", dateStr)
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD"})
    }

    trips, err := h.Catalog.Search(c.Request().Context(), origin, destination, date)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }

    out := make([]tripView, 0, len(trips))
    for _, t := range trips {
        out = append(out, toTripView(t))
    }
    return c.JSON(http.StatusOK, echo.Map{"data": out, "total": len(out)})
}

// GetTrip returns a single trip by id.
func (h *TripHandler) GetTrip(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
    }
    t, err := h.Catalog.GetByID(c.Request().Context(), id)
    if err != nil {
        if errors.Is(err, repository.ErrTripNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
        }
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }
    return c.JSON(http.StatusOK, toTripView(t))
}

// GetTripSeats returns the seat picker view for a trip: which seat
// numbers are confirmed, which carry an active hold, and which remain
// free.  Seat numbers run 1..capacity.
func (h *TripHandler) GetTripSeats(c echo.Context) error {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
    }
    ctx := c.Request().Context()

    if _, err := h.Catalog.GetByID(ctx, id); err != nil {
        if errors.Is(err, repository.ErrTripNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
        }
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }

    occupied, err := h.Engine.OccupiedSeats(ctx, id)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }
    held, err := h.Holds.HeldSeats(ctx, id)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }

    taken := make(map[int]bool, len(occupied)+len(held))
    for _, s := range occupied {
        taken[s] = true
    }
    for _, s := range held {
        taken[s] = true
    }
    free := make([]int, 0, model.TripCapacity)
    for s := 1; s <= model.TripCapacity; s++ {
        if !taken[s] {
            free = append(free, s)
        }
    }

    return c.JSON(http.StatusOK, echo.Map{
        "trip_id":  id,
        "capacity": model.TripCapacity,
        "occupied": occupied,
        "held":     held,
        "free":     free,
    })
}
