package main // Entry point package

import (
    "log"
    "time"

    "github.com/joho/godotenv"    // loads .env files in development
    "github.com/labstack/echo/v4" // Echo web framework

    "github.com/iliyamo/bus-trip-reservation/internal/booking"
    "github.com/iliyamo/bus-trip-reservation/internal/config"
    "github.com/iliyamo/bus-trip-reservation/internal/database"
    "github.com/iliyamo/bus-trip-reservation/internal/handler"
    "github.com/iliyamo/bus-trip-reservation/internal/middleware"
    "github.com/iliyamo/bus-trip-reservation/internal/queue"
    "github.com/iliyamo/bus-trip-reservation/internal/repository"
    "github.com/iliyamo/bus-trip-reservation/internal/router"
    "github.com/iliyamo/bus-trip-reservation/internal/service"
)

// main wires every dependency once and starts the server.  Request
// logic receives its collaborators through constructors; nothing in
// the handler or booking packages reads the environment directly.
func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Repositories over the shared pool.
    trips := repository.NewTripRepo(db)
    reservations := repository.NewReservationRepo(db)
    holds := repository.NewSeatHoldRepo(db)
    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)

    engine := booking.NewEngine(reservations, trips)
    publisher := service.NewAMQPPublisher(cfg.AMQPURL)

    // Redis is optional: a nil client disables rate limiting and the
    // response cache without affecting bookings.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; rate limiting and response cache disabled")
    }
    rateLimit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
    respCache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

    authH := handler.NewAuthHandler(cfg, users, tokens)
    tripH := handler.NewTripHandler(trips, engine, holds)
    resvH := handler.NewReservationHandler(engine, holds, trips, publisher,
        time.Duration(cfg.HoldTTLMin)*time.Minute)
    adminH := handler.NewAdminTripHandler(trips)

    e := echo.New()
    e.Use(rateLimit)

    router.RegisterRoutes(e)
    router.RegisterAuth(e, authH, cfg.JWTSecret)
    router.RegisterPublic(e, tripH, respCache)
    router.RegisterCustomer(e, resvH, cfg.JWTSecret)
    router.RegisterAdmin(e, adminH, cfg.JWTSecret)

    // Background consumer mirrors confirmations to logs/reservation.log.
    go queue.StartReservationConsumer(cfg.AMQPURL)

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
