package metrics // package metrics exposes Prometheus instrumentation for the booking path

import (
    "github.com/labstack/echo/v4"
    "github.com/prometheus/client_golang/prometheus"
    "github.com/prometheus/client_golang/prometheus/promauto"
    "github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counters for the two outcomes worth watching on the reserve path.
// Conflicts are normal under load; a rising storage error rate is not.
var (
    SeatsConfirmed = promauto.NewCounter(prometheus.CounterOpts{
        Name: "reservation_seats_confirmed_total",
        Help: "Number of seats successfully confirmed.",
    })

    SeatConflicts = promauto.NewCounter(prometheus.CounterOpts{
        Name: "reservation_seat_conflicts_total",
        Help: "Number of reserve attempts rejected because a seat was taken.",
    })

    StorageErrors = promauto.NewCounter(prometheus.CounterOpts{
        Name: "reservation_storage_errors_total",
        Help: "Number of reserve attempts that failed against the ledger.",
    })
)

// Handler adapts the Prometheus HTTP handler to an echo.HandlerFunc
// for mounting at /metrics.
func Handler() echo.HandlerFunc {
    h := promhttp.Handler()
    return func(c echo.Context) error {
        h.ServeHTTP(c.Response(), c.Request())
        return nil
    }
}
