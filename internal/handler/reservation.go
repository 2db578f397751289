package handler

import (
    "context"
    "errors"
    "log"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/metrics"
    "github.com/iliyamo/bus-trip-reservation/internal/middleware"
    "github.com/iliyamo/bus-trip-reservation/internal/model"
    "github.com/iliyamo/bus-trip-reservation/internal/queue"
    "github.com/iliyamo/bus-trip-reservation/internal/repository"
    "github.com/iliyamo/bus-trip-reservation/internal/service"
)

// ReservationHandler serves the customer booking flow: holding seats,
// confirming them and reading back reservation history.  All writes
// go through the booking engine so the validation order and conflict
// semantics live in one place.
type ReservationHandler struct {
    Engine    *booking.Engine
    Holds     booking.HoldStore
    Catalog   booking.Catalog
    Publisher service.EventPublisher // nil disables events
    HoldTTL   time.Duration
}

func NewReservationHandler(engine *booking.Engine, holds booking.HoldStore, catalog booking.Catalog, pub service.EventPublisher, holdTTL time.Duration) *ReservationHandler {
    return &ReservationHandler{Engine: engine, Holds: holds, Catalog: catalog, Publisher: pub, HoldTTL: holdTTL}
}

type seatsReq struct {
    Seats []int `json:"seats"`
}

type holdView struct {
    SeatNumber int       `json:"seat_number"`
    HoldToken  string    `json:"hold_token"`
    ExpiresAt  time.Time `json:"expires_at"`
}

type reservationView struct {
    ID         uint64    `json:"id"`
    SeatNumber int       `json:"seat_number"`
    Status     string    `json:"status"`
    CreatedAt  time.Time `json:"created_at"`
    Trip       tripView  `json:"trip"`
}

// tripIDParam parses the :id path parameter.
func tripIDParam(c echo.Context) (uint64, bool) {
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    return id, err == nil && id > 0
}

// HoldSeats parks the requested seats for the current user for the
// configured TTL.  A seat already confirmed or held by someone else
// fails the whole request; holds are all-or-nothing like confirms.
func (h *ReservationHandler) HoldSeats(c echo.Context) error {
    sess, ok := middleware.CurrentSession(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    tripID, ok := tripIDParam(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
    }

    var req seatsReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if len(req.Seats) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no_seats_selected"})
    }
    if len(req.Seats) > booking.MaxSeatsPerBooking {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "too_many_seats", "max": booking.MaxSeatsPerBooking})
    }
    for _, s := range req.Seats {
        if s < 1 || s > model.TripCapacity {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_seat", "seat": s})
        }
    }

    ctx := c.Request().Context()
    if _, err := h.Catalog.GetByID(ctx, tripID); err != nil {
        if errors.Is(err, repository.ErrTripNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
        }
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }

    expires := time.Now().UTC().Add(h.HoldTTL)
    holds, err := h.Holds.HoldSeats(ctx, tripID, req.Seats, sess.UserID, expires)
    if err != nil {
        var conflict *booking.ConflictError
        if errors.As(err, &conflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "seat_already_booked", "seat": conflict.Seat})
        }
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }

    out := make([]holdView, 0, len(holds))
    for _, hd := range holds {
        out = append(out, holdView{SeatNumber: hd.SeatNumber, HoldToken: hd.HoldToken, ExpiresAt: hd.ExpiresAt})
    }
    return c.JSON(http.StatusCreated, echo.Map{"trip_id": tripID, "holds": out})
}

// ReleaseHolds drops every hold the current user has on the trip and
// reports which seats were freed.
func (h *ReservationHandler) ReleaseHolds(c echo.Context) error {
    sess, ok := middleware.CurrentSession(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    tripID, ok := tripIDParam(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
    }

    freed, err := h.Holds.ReleaseHolds(c.Request().Context(), tripID, sess.UserID)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }
    return c.JSON(http.StatusOK, echo.Map{"trip_id": tripID, "released": freed})
}

// Reserve confirms the requested seats for the current user.  The
// engine owns the validation order; this handler only maps failures to
// stable JSON reason codes:
//
//	401 unauthenticated       400 no_seats_selected / too_many_seats /
//	invalid_seat              409 seat_already_booked (with the seat)
//	503 storage_unavailable
//
// A conflict is terminal for the request; clients pick new seats and
// resubmit.
func (h *ReservationHandler) Reserve(c echo.Context) error {
    sess, ok := middleware.CurrentSession(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    tripID, ok := tripIDParam(c)
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid trip id"})
    }

    var req seatsReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }

    ctx := c.Request().Context()
    trip, err := h.Catalog.GetByID(ctx, tripID)
    if err != nil {
        if errors.Is(err, repository.ErrTripNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "trip not found"})
        }
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }

    batch, err := h.Engine.Reserve(ctx, sess.UserID, tripID, req.Seats)
    if err != nil {
        return h.reserveError(c, err)
    }

    metrics.SeatsConfirmed.Add(float64(len(batch.SeatNumbers)))
    h.publishConfirmed(trip, batch)

    return c.JSON(http.StatusCreated, batch)
}

// reserveError maps engine errors onto HTTP responses.
func (h *ReservationHandler) reserveError(c echo.Context, err error) error {
    var invalid *booking.InvalidSeatError
    var taken *booking.SeatAlreadyBookedError
    var storage *booking.StorageError
    switch {
    case errors.Is(err, booking.ErrUnauthenticated):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    case errors.Is(err, booking.ErrNoSeatsSelected):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "no_seats_selected"})
    case errors.Is(err, booking.ErrTooManySeats):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "too_many_seats", "max": booking.MaxSeatsPerBooking})
    case errors.As(err, &invalid):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_seat", "seat": invalid.Seat})
    case errors.As(err, &taken):
        metrics.SeatConflicts.Inc()
        return c.JSON(http.StatusConflict, echo.Map{"error": "seat_already_booked", "seat": taken.Seat})
    case errors.As(err, &storage):
        metrics.StorageErrors.Inc()
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reserve failed"})
    }
}

// publishConfirmed emits the confirmation event in the background.
// Delivery is best effort; a broker outage never fails a booking that
// the ledger already committed.
func (h *ReservationHandler) publishConfirmed(trip model.Trip, batch *booking.Batch) {
    if h.Publisher == nil {
        return
    }
    ev := queue.ReservationConfirmedEvent{
        ReservationIDs:   batch.ReservationIDs,
        UserID:           batch.UserID,
        TripID:           batch.TripID,
        Origin:           trip.Origin,
        Destination:      trip.Destination,
        DepartureDate:    trip.DepartureDate.Format("2006-01-02"),
        SeatNumbers:      batch.SeatNumbers,
        TotalAmountCents: trip.PriceCents * uint32(len(batch.SeatNumbers)),
        ConfirmedAt:      batch.CreatedAt.UTC().Format(time.RFC3339),
    }
    go func() {
        ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
        defer cancel()
        if err := h.Publisher.PublishReservationConfirmed(ctx, ev); err != nil {
            log.Printf("reserve: publish event failed: %v", err)
        }
    }()
}

// ListReservations returns the current user's booking history, newest
// first, each row joined with its trip.
func (h *ReservationHandler) ListReservations(c echo.Context) error {
    sess, ok := middleware.CurrentSession(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }

    entries, err := h.Engine.ReservationsFor(c.Request().Context(), sess.UserID)
    if err != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }

    out := make([]reservationView, 0, len(entries))
    for _, e := range entries {
        out = append(out, reservationView{
            ID:         e.Reservation.ID,
            SeatNumber: e.Reservation.SeatNumber,
            Status:     e.Reservation.Status,
            CreatedAt:  e.Reservation.CreatedAt,
            Trip:       toTripView(e.Trip),
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"data": out, "total": len(out)})
}

// GetReservation returns one reservation of the current user.  Looking
// it up through the user's own history doubles as the ownership check:
// another user's reservation id is simply not found.
func (h *ReservationHandler) GetReservation(c echo.Context) error {
    sess, ok := middleware.CurrentSession(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
    }
    id, err := strconv.ParseUint(c.Param("id"), 10, 64)
    if err != nil || id == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
    }

    entries, lerr := h.Engine.ReservationsFor(c.Request().Context(), sess.UserID)
    if lerr != nil {
        return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "storage_unavailable"})
    }
    for _, e := range entries {
        if e.Reservation.ID == id {
            return c.JSON(http.StatusOK, reservationView{
                ID:         e.Reservation.ID,
                SeatNumber: e.Reservation.SeatNumber,
                Status:     e.Reservation.Status,
                CreatedAt:  e.Reservation.CreatedAt,
                Trip:       toTripView(e.Trip),
            })
        }
    }
    return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
}
