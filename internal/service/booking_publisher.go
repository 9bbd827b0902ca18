// Package service holds side effects that run after a request has been
// served, such as publishing domain events to RabbitMQ.
package service

import (
    "context"
    "encoding/json"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"
    "github.com/sirupsen/logrus"

    "github.com/iliyamo/talent-marketplace/internal/config"
    "github.com/iliyamo/talent-marketplace/internal/logger"
    "github.com/iliyamo/talent-marketplace/internal/queue"
)

// BookingPublisher publishes booking.paid events.  Each call dials the
// broker; errors are logged and returned so the caller can choose to
// ignore them without failing the request.
type BookingPublisher struct {
    cfg config.QueueConfig
    log *logrus.Entry
}

func NewBookingPublisher(cfg config.QueueConfig) *BookingPublisher {
    return &BookingPublisher{cfg: cfg, log: logger.WithComponent("booking-publisher")}
}

// PublishBookingPaid sends ev to the durable booking queue as a
// persistent message.
func (p *BookingPublisher) PublishBookingPaid(ctx context.Context, ev queue.BookingPaidEvent) error {
    pub, err := newPublishing(ev, time.Now().UTC())
    if err != nil {
        p.log.WithError(err).Error("marshal event failed")
        return err
    }
    log := p.log.WithFields(logrus.Fields{"booking_id": ev.BookingID, "message_id": pub.MessageId})

    conn, err := amqp.Dial(p.cfg.URL)
    if err != nil {
        log.WithError(err).Warn("dial failed")
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.WithError(err).Warn("channel open failed")
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so messages survive broker restarts.
    if _, err := ch.QueueDeclare(p.cfg.BookingQueue, true, false, false, false, nil); err != nil {
        log.WithError(err).Warn("queue declare failed")
        return err
    }
    if err := ch.PublishWithContext(ctx, "", p.cfg.BookingQueue, false, false, pub); err != nil {
        log.WithError(err).Warn("publish failed")
        return err
    }
    log.Debug("booking event published")
    return nil
}

func newPublishing(ev queue.BookingPaidEvent, now time.Time) (amqp.Publishing, error) {
    body, err := json.Marshal(ev)
    if err != nil {
        return amqp.Publishing{}, err
    }
    return amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    uuid.NewString(),
        Type:         "booking.paid",
        Timestamp:    now,
        Body:         body,
    }, nil
}
