// Package payment talks to the external payment gateway.  Callers depend on
// the Gateway interface; StripeGateway is the production implementation.
package payment

import (
	"context"
	"encoding/json"
	"errors"
)

// IntentRequest describes a payment intent to create and confirm at once.
type IntentRequest struct {
	AmountCents     int64
	Currency        string
	PaymentMethodID string
	ReturnURL       string
	// Metadata is attached to the intent for reconciliation (order id, buyer id).
	Metadata map[string]string
}

// Intent is the gateway's payment intent as echoed back to clients.
type Intent struct {
	ID            string            `json:"id"`
	Object        string            `json:"object"`
	Amount        int64             `json:"amount"`
	Currency      string            `json:"currency"`
	Status        string            `json:"status"`
	PaymentMethod string            `json:"payment_method,omitempty"`
	ClientSecret  string            `json:"client_secret,omitempty"`
	Created       int64             `json:"created"`
	Metadata      map[string]string `json:"metadata,omitempty"`

	// Raw is the gateway's intent object exactly as received.
	Raw json.RawMessage `json:"-"`
}

// Response is what clients see: the gateway's full object when it was
// received (next_action, last_payment_error, ...), the summary otherwise.
func (i *Intent) Response() any {
	if len(i.Raw) > 0 {
		return i.Raw
	}
	return i
}

// StatusSucceeded is the intent status once funds are captured.
const StatusSucceeded = "succeeded"

// Succeeded reports whether the intent completed without further action.
func (i *Intent) Succeeded() bool { return i != nil && i.Status == StatusSucceeded }

// DeclineError is returned when the gateway refuses the payment method.
// Message is safe to show the payer.
type DeclineError struct {
	Code    string
	Message string
	Err     error
}

func (e *DeclineError) Error() string { return "payment declined: " + e.Message }
func (e *DeclineError) Unwrap() error { return e.Err }

// ErrNotConfigured is returned by gateways without credentials.
var ErrNotConfigured = errors.New("payment gateway not configured")

// Gateway creates and confirms payment intents.
type Gateway interface {
	CreateAndConfirm(ctx context.Context, req IntentRequest) (*Intent, error)
}
