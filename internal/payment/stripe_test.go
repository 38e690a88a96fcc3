package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func newTestGateway(t *testing.T, h http.HandlerFunc) *StripeGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	return NewStripeGatewayWithBackends("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
}

func TestCreateAndConfirmSendsConfirmedIntent(t *testing.T) {
	var form map[string]string
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payment_intents", r.URL.Path)
		require.NoError(t, r.ParseForm())
		form = map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":1500,"currency":"usd","status":"succeeded","created":1700000000,"payment_method":"pm_card_visa","metadata":{"order_id":"4"}}`))
	})

	intent, err := g.CreateAndConfirm(context.Background(), IntentRequest{
		AmountCents:     1500,
		Currency:        "usd",
		PaymentMethodID: "pm_card_visa",
		ReturnURL:       "https://shop.example/payment/success",
		Metadata:        map[string]string{"order_id": "4"},
	})
	require.NoError(t, err)

	assert.Equal(t, "1500", form["amount"])
	assert.Equal(t, "usd", form["currency"])
	assert.Equal(t, "pm_card_visa", form["payment_method"])
	assert.Equal(t, "true", form["confirm"])
	assert.Equal(t, "true", form["automatic_payment_methods[enabled]"])
	assert.Equal(t, "never", form["automatic_payment_methods[allow_redirects]"])
	assert.Equal(t, "https://shop.example/payment/success", form["return_url"])
	assert.Equal(t, "4", form["metadata[order_id]"])

	assert.Equal(t, "pi_123", intent.ID)
	assert.Equal(t, "pm_card_visa", intent.PaymentMethod)
	assert.True(t, intent.Succeeded())
}

func TestCreateAndConfirmKeepsFullIntent(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"pi_3ds","object":"payment_intent","amount":2000,"amount_received":0,"currency":"eur","status":"requires_action","client_secret":"pi_3ds_secret_x","payment_method_types":["card"],"next_action":{"type":"use_stripe_sdk","use_stripe_sdk":{"type":"three_d_secure_redirect"}}}`))
	})

	intent, err := g.CreateAndConfirm(context.Background(), IntentRequest{AmountCents: 2000, Currency: "eur", PaymentMethodID: "pm_card_threeDSecure2Required"})
	require.NoError(t, err)
	assert.False(t, intent.Succeeded())

	body, err := json.Marshal(intent.Response())
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "requires_action", out["status"])
	assert.Equal(t, "pi_3ds_secret_x", out["client_secret"])
	assert.Contains(t, out, "payment_method_types")
	assert.Contains(t, out, "amount_received")
	require.Contains(t, out, "next_action")
	assert.Equal(t, "use_stripe_sdk", out["next_action"].(map[string]any)["type"])
}

func TestIntentResponseFallsBackToSummary(t *testing.T) {
	in := &Intent{ID: "pi_1", Status: StatusSucceeded}
	assert.Same(t, in, in.Response())
}

func TestCreateAndConfirmCardDecline(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		_, _ = w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	})

	_, err := g.CreateAndConfirm(context.Background(), IntentRequest{AmountCents: 100, Currency: "usd", PaymentMethodID: "pm_x"})

	var decline *DeclineError
	require.True(t, errors.As(err, &decline), "got %v", err)
	assert.Equal(t, "card_declined", decline.Code)
	assert.Equal(t, "Your card was declined.", decline.Message)
}

func TestCreateAndConfirmServerError(t *testing.T) {
	g := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"type":"api_error","message":"boom"}}`))
	})

	_, err := g.CreateAndConfirm(context.Background(), IntentRequest{AmountCents: 100, Currency: "usd", PaymentMethodID: "pm_x"})
	require.Error(t, err)
	var decline *DeclineError
	assert.False(t, errors.As(err, &decline))
}

func TestUnconfiguredGateway(t *testing.T) {
	_, err := NewStripeGateway("").CreateAndConfirm(context.Background(), IntentRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}
