// Package queue contains the background consumer that listens to the
// reservation.confirmed queue and appends entries to logs/reservation.log.
package queue

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"
)

// ReservationQueueName is the durable queue both the publisher and the
// consumer declare.  Declaration is idempotent so startup order does
// not matter.
const ReservationQueueName = "reservation.confirmed"

// StartReservationConsumer connects to RabbitMQ at the given URL,
// declares the reservation.confirmed queue and consumes it forever.
// Each message is appended to logs/reservation.log as one line.  The
// function runs a reconnect loop with exponential backoff and never
// returns under normal operation; it is meant to run in its own
// goroutine.  Messages that fail to process are rejected without
// requeue so a poison message cannot wedge the queue.
func StartReservationConsumer(url string) {
    backoff := time.Second
    for {
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("reservation-consumer: dial failed: %v; retrying in %s", err, backoff)
            time.Sleep(backoff)
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after a successful connect

        if err := consumeLoop(conn); err != nil {
            log.Printf("reservation-consumer: consume loop ended: %v; reconnecting", err)
            time.Sleep(2 * time.Second)
        }
    }
}

func consumeLoop(conn *amqp.Connection) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(50, 0, false); err != nil {
        log.Printf("reservation-consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(ReservationQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(ReservationQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for d := range msgs {
        if err := handleMessage(d.Body); err != nil {
            log.Printf("reservation-consumer: handle message failed: %v", err)
            _ = d.Nack(false, false) // reject without requeue to avoid tight loops
            continue
        }
        _ = d.Ack(false)
    }
    return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
    var ev ReservationConfirmedEvent
    if err := json.Unmarshal(body, &ev); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    if err := os.MkdirAll("logs", 0o755); err != nil {
        return fmt.Errorf("mkdir logs: %w", err)
    }
    fpath := filepath.Join("logs", "reservation.log")
    f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
    if err != nil {
        return fmt.Errorf("open log file: %w", err)
    }
    defer f.Close()

    seats := make([]string, 0, len(ev.SeatNumbers))
    for _, s := range ev.SeatNumbers {
        seats = append(seats, strconv.Itoa(s))
    }

    line := fmt.Sprintf("[%s] Reservation confirmed | user_id=%d | trip_id=%d | route=\"%s -> %s\" | date=%s | total=%d cents | seats=[%s]\n",
        ev.ConfirmedAt, ev.UserID, ev.TripID, ev.Origin, ev.Destination, ev.DepartureDate, ev.TotalAmountCents, strings.Join(seats, ","))

    if _, err := f.WriteString(line); err != nil {
        return fmt.Errorf("write log: %w", err)
    }
    return nil
}
