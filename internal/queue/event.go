// Package queue defines the domain events exchanged over RabbitMQ, the
// publisher used by services and the audit consumer.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// Exchange is the durable topic exchange every event is published to.  The
// routing key is the event name.
const Exchange = "marketplace.events"

// Event names double as routing keys.
const (
	PaymentCreated         = "payment.created"
	ProductPurged          = "product.purged"
	PasswordReset          = "password.reset"
	PasswordResetRequested = "password.reset_requested"
)

// Meta is embedded in every event.
type Meta struct {
	EventID    string `json:"event_id"`
	OccurredAt string `json:"occurred_at"`
}

// NewMeta stamps an event with a fresh id and the given time.
func NewMeta(at time.Time) Meta {
	return Meta{EventID: uuid.NewString(), OccurredAt: at.UTC().Format(time.RFC3339)}
}

// PaymentCreatedEvent is published after the gateway accepted a payment
// intent.  OrderID is zero for payments not tied to an order.
type PaymentCreatedEvent struct {
	Meta
	PaymentIntentID string `json:"payment_intent_id"`
	BuyerID         uint64 `json:"buyer_id"`
	OrderID         uint64 `json:"order_id,omitempty"`
	AmountCents     int64  `json:"amount_cents"`
	Currency        string `json:"currency"`
	Status          string `json:"status"`
}

// ProductPurgedEvent is published after a trashed product was deleted.
type ProductPurgedEvent struct {
	Meta
	ProductID uint64 `json:"product_id"`
	SellerID  uint64 `json:"seller_id"`
	ActorID   uint64 `json:"actor_id"`
	ActorRole string `json:"actor_role"`
}

// PasswordResetEvent is published after a reset token was consumed.
type PasswordResetEvent struct {
	Meta
	UserID uint64 `json:"user_id"`
}

// PasswordResetRequestedEvent carries the raw token for the mailer.  The
// audit consumer never writes Token to disk.
type PasswordResetRequestedEvent struct {
	Meta
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}
