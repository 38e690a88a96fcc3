package queue

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/marketplace-api/internal/timeouts"
)

// Publisher sends events to the broker.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
}

// AMQPPublisher publishes persistent JSON messages to Exchange.  It dials
// per publish: events are rare (payments, purges, resets) and a short-lived
// connection survives broker restarts without reconnect logic.
type AMQPPublisher struct {
	url    string
	logger *slog.Logger
}

func NewAMQPPublisher(url string, logger *slog.Logger) *AMQPPublisher {
	return &AMQPPublisher{url: url, logger: logger}
}

// Publish declares the exchange (idempotent) and publishes event under
// routingKey.  Errors are logged and returned so callers can treat
// publishing as best effort.  The dial and the AMQP handshake share ctx's
// deadline, or timeouts.Publish when ctx has none.
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	limit, err := dialTimeout(ctx)
	if err != nil {
		p.logger.Warn("rabbitmq publish skipped", "routing_key", routingKey, "err", err)
		return err
	}
	conn, err := amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(limit),
	})
	if err != nil {
		p.logger.Error("rabbitmq dial failed", "err", err)
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		p.logger.Error("rabbitmq channel open failed", "err", err)
		return err
	}
	defer func() { _ = ch.Close() }()

	if err := DeclareExchange(ch); err != nil {
		p.logger.Error("rabbitmq exchange declare failed", "err", err)
		return err
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("rabbitmq marshal event failed", "routing_key", routingKey, "err", err)
		return err
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // store on disk
		Timestamp:    time.Now().UTC(),
		Type:         routingKey,
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, Exchange, routingKey, false, false, pub); err != nil {
		p.logger.Error("rabbitmq publish failed", "routing_key", routingKey, "err", err)
		return err
	}
	return nil
}

func dialTimeout(ctx context.Context) (time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	dl, ok := ctx.Deadline()
	if !ok {
		return timeouts.Publish, nil
	}
	d := time.Until(dl)
	if d <= 0 {
		return 0, context.DeadlineExceeded
	}
	return d, nil
}

// DeclareExchange declares the durable topic exchange.
func DeclareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		Exchange, // name
		"topic",  // kind
		true,     // durable
		false,    // autoDelete
		false,    // internal
		false,    // noWait
		nil,      // args
	)
}

// NoopPublisher drops every event.  It is used when the broker is disabled.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }
