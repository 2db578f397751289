package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4" // Echo web framework handles routing

    "github.com/iliyamo/bus-trip-reservation/internal/handler"
    "github.com/iliyamo/bus-trip-reservation/internal/metrics"
    "github.com/iliyamo/bus-trip-reservation/internal/middleware"
)

// RegisterRoutes registers the operational endpoints that carry no
// authentication: the health check used by load balancers and the
// Prometheus metrics scrape target.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
    e.GET("/metrics", metrics.Handler())
}

// RegisterAuth registers the authentication endpoints.  Register,
// login and refresh live under /v1/auth and need no session; /v1/me
// sits behind JWTAuth.  Logout accepts either a refresh token in the
// body or a bearer token (to end all sessions), so it gets the
// optional variant of the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
    g := e.Group("/v1/auth")
    g.POST("/register", a.Register)
    g.POST("/login", a.Login)
    g.POST("/refresh", a.Refresh)
    g.POST("/logout", a.Logout, middleware.JWTAuthOptional(jwtSecret))

    auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
    auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated browse endpoints: trip
// search, trip detail and the seat availability view.  The extra
// middleware (rate limiting, response cache) is passed in by main so
// the router stays free of Redis wiring.
func RegisterPublic(e *echo.Echo, t *handler.TripHandler, mw ...echo.MiddlewareFunc) {
    g := e.Group("/v1", mw...)
    g.GET("/trips/search", t.SearchTrips)
    g.GET("/trips/:id", t.GetTrip)
    g.GET("/trips/:id/seats", t.GetTripSeats)
}

// RegisterCustomer registers the booking flow under /v1.  Every route
// requires a valid JWT with the CUSTOMER role: holding seats,
// releasing holds, confirming a reservation and reading history.
func RegisterCustomer(e *echo.Echo, h *handler.ReservationHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("CUSTOMER"),
    )
    g.POST("/trips/:id/hold", h.HoldSeats)
    g.DELETE("/trips/:id/hold", h.ReleaseHolds)
    g.POST("/trips/:id/reserve", h.Reserve)
    g.GET("/my-reservations", h.ListReservations)
    g.GET("/reservations/:id", h.GetReservation)
}

// RegisterAdmin registers the trip seeding endpoints.  Only the ADMIN
// role may create or import trips.
func RegisterAdmin(e *echo.Echo, h *handler.AdminTripHandler, jwtSecret string) {
    g := e.Group(
        "/v1",
        middleware.JWTAuth(jwtSecret),
        middleware.RequireRole("ADMIN"),
    )
    g.POST("/trips", h.CreateTrip)
    g.POST("/trips/import", h.ImportTrips)
}
