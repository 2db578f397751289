// Package service holds glue between the HTTP layer and external
// systems.  The queue publisher sends domain events to RabbitMQ;
// failures are logged and returned so callers can ignore them without
// interrupting the request that triggered the event.
package service

import (
    "context"
    "encoding/json"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/iliyamo/bus-trip-reservation/internal/queue"
)

// EventPublisher publishes reservation events.  The HTTP layer depends
// on this interface so tests can substitute a recorder.
type EventPublisher interface {
    PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error
}

// AMQPPublisher publishes events to a RabbitMQ broker.  It dials per
// publish; confirmations are rare enough that connection churn is not
// a concern, and a dead broker then only costs one failed dial.
type AMQPPublisher struct {
    URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishReservationConfirmed sends the event to the
// reservation.confirmed queue with persistent delivery.  Any error is
// logged and returned; the caller decides whether it matters.
func (p *AMQPPublisher) PublishReservationConfirmed(ctx context.Context, ev queue.ReservationConfirmedEvent) error {
    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Idempotent declare; durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(queue.ReservationQueueName, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(ev)
    if err != nil {
        log.Printf("rabbitmq: marshal event failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }

    if err := ch.PublishWithContext(ctx,
        "",                         // default exchange
        queue.ReservationQueueName, // routing key = queue name
        false,                      // mandatory
        false,                      // immediate
        pub,
    ); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}
