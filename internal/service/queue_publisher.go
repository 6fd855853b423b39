// Package service provides adapters that push domain events out of the
// process.  Publisher sends confirmed bookings to RabbitMQ; every error is
// logged before it is returned.
package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinema-seat-booking/internal/model"
	q "github.com/iliyamo/cinema-seat-booking/internal/queue"
)

// DefaultPublishTimeout bounds one publish, dial and handshake included.
const DefaultPublishTimeout = 2 * time.Second

// Publisher publishes BookingConfirmedEvent messages.  It dials the broker
// once per message; Timeout caps the whole exchange so a dead broker cannot
// hold up a booking request.
type Publisher struct {
	URL     string
	Timeout time.Duration
	now     func() time.Time
}

// NewPublisher returns a Publisher for the broker at url.
func NewPublisher(url string) *Publisher {
	return &Publisher{URL: url, Timeout: DefaultPublishTimeout, now: time.Now}
}

// BookingConfirmed implements booking.Notifier.
func (p *Publisher) BookingConfirmed(ctx context.Context, rec model.BookingRecord) error {
	return p.PublishBookingConfirmed(ctx, q.NewBookingConfirmedEvent(rec, p.now()))
}

// PublishBookingConfirmed publishes event to the "booking.confirmed" queue.
// Messages are marked as persistent.
func (p *Publisher) PublishBookingConfirmed(ctx context.Context, event q.BookingConfirmedEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("rabbitmq: marshal event failed")
		return err
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: dial failed")
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logrus.WithError(err).Warn("rabbitmq: channel open failed")
		return err
	}
	defer func() { _ = ch.Close() }()

	// Durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.BookingQueueName, // name
		true,               // durable
		false,              // autoDelete
		false,              // exclusive
		false,              // noWait
		nil,                // args
	); err != nil {
		logrus.WithError(err).Warn("rabbitmq: queue declare failed")
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    p.now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", q.BookingQueueName, false, false, pub); err != nil {
		logrus.WithError(err).Warn("rabbitmq: publish failed")
		return err
	}
	logrus.WithField("booking_id", event.BookingID).Debug("rabbitmq: booking event published")
	return nil
}
