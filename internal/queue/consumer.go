package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// AuditQueue is bound to every routing key on Exchange.
const AuditQueue = "marketplace.audit"

// AuditConsumer appends one line per event to an audit log file.
type AuditConsumer struct {
	URL     string
	LogPath string
	Logger  *slog.Logger
}

// Run connects to the broker and consumes until ctx is cancelled.  Broken
// connections are retried with exponential backoff capped at 30s.
func (a *AuditConsumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(a.URL)
		if err != nil {
			a.Logger.Warn("audit consumer dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second // reset after successful connect

		err = a.consumeLoop(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.Logger.Warn("audit consumer loop ended; reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (a *AuditConsumer) consumeLoop(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		a.Logger.Warn("audit consumer set QoS failed", "err", err)
	}
	if err := DeclareExchange(ch); err != nil {
		return fmt.Errorf("exchange declare: %w", err)
	}
	if _, err := ch.QueueDeclare(AuditQueue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	if err := ch.QueueBind(AuditQueue, "#", Exchange, false, nil); err != nil {
		return fmt.Errorf("queue bind: %w", err)
	}

	msgs, err := ch.Consume(AuditQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := a.handle(d.RoutingKey, d.Body); err != nil {
				a.Logger.Error("audit consumer handle message failed", "routing_key", d.RoutingKey, "err", err)
				_ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func (a *AuditConsumer) handle(routingKey string, body []byte) error {
	line, err := FormatAuditLine(routingKey, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(a.LogPath), 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	f, err := os.OpenFile(a.LogPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// FormatAuditLine renders one event as a single human-friendly line.
// Unknown routing keys are rejected.
func FormatAuditLine(routingKey string, body []byte) (string, error) {
	switch routingKey {
	case PaymentCreated:
		var ev PaymentCreatedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Payment created | event_id=%s | intent=%s | buyer_id=%d | order_id=%d | amount=%d %s | status=%s\n",
			ev.OccurredAt, ev.EventID, ev.PaymentIntentID, ev.BuyerID, ev.OrderID, ev.AmountCents, ev.Currency, ev.Status), nil
	case ProductPurged:
		var ev ProductPurgedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Product purged | event_id=%s | product_id=%d | seller_id=%d | actor_id=%d | actor_role=%s\n",
			ev.OccurredAt, ev.EventID, ev.ProductID, ev.SellerID, ev.ActorID, ev.ActorRole), nil
	case PasswordReset:
		var ev PasswordResetEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Password reset | event_id=%s | user_id=%d\n", ev.OccurredAt, ev.EventID, ev.UserID), nil
	case PasswordResetRequested:
		var ev PasswordResetRequestedEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return "", fmt.Errorf("unmarshal: %w", err)
		}
		return fmt.Sprintf("[%s] Password reset requested | event_id=%s | user_id=%d | expires_at=%s\n",
			ev.OccurredAt, ev.EventID, ev.UserID, ev.ExpiresAt), nil
	}
	return "", fmt.Errorf("unknown routing key %q", routingKey)
}
