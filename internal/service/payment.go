package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/payment"
	"github.com/iliyamo/marketplace-api/internal/policy"
	"github.com/iliyamo/marketplace-api/internal/queue"
	"github.com/iliyamo/marketplace-api/internal/repository"
	"github.com/iliyamo/marketplace-api/internal/timeouts"
	"github.com/iliyamo/marketplace-api/internal/validation"
)

// DefaultCurrency is used when a payment request names none.
const DefaultCurrency = "usd"

// CreatePaymentInput is the body of POST /v1/payments.  Amount is in the
// currency's smallest unit and is ignored when OrderID is set.
type CreatePaymentInput struct {
	Amount          int64  `json:"amount" validate:"required_without=OrderID,gte=0,max=99999999"`
	Currency        string `json:"currency" validate:"len=3"`
	PaymentMethodID string `json:"paymentMethodId" validate:"required,max=255"`
	OrderID         uint64 `json:"orderId"`
}

// PaymentService creates and confirms payment intents for buyers.
type PaymentService struct {
	gateway   payment.Gateway
	orders    OrderStore
	publisher queue.Publisher
	logger    *slog.Logger
	returnURL string
	now       Clock
}

func NewPaymentService(gw payment.Gateway, orders OrderStore, pub queue.Publisher, logger *slog.Logger, returnURL string) *PaymentService {
	return &PaymentService{
		gateway:   gw,
		orders:    orders,
		publisher: pub,
		logger:    logger,
		returnURL: returnURL,
		now:       systemClock,
	}
}

// Create authorizes p, validates in and asks the gateway to create and
// confirm an intent.  Nothing reaches the gateway unless every check passed.
// When the intent references a pending order and succeeds, the order is
// marked paid.
func (s *PaymentService) Create(ctx context.Context, p *model.Principal, in CreatePaymentInput) (*payment.Intent, error) {
	if err := policy.Authorize(p, policy.CreatePayment, policy.Resource{}); err != nil {
		return nil, err
	}
	in.Currency = strings.ToLower(strings.TrimSpace(in.Currency))
	if in.Currency == "" {
		in.Currency = DefaultCurrency
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	req := payment.IntentRequest{
		AmountCents:     in.Amount,
		Currency:        in.Currency,
		PaymentMethodID: in.PaymentMethodID,
		ReturnURL:       s.returnURL,
		Metadata:        map[string]string{"buyer_id": strconv.FormatUint(p.ID, 10)},
	}

	var order *model.Order
	if in.OrderID != 0 {
		o, err := s.orders.GetByID(ctx, in.OrderID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("Order not found")
		}
		if err != nil {
			return nil, apperr.Internal("load order", err)
		}
		if o.BuyerID != p.ID {
			return nil, apperr.Forbidden("You can only pay for your own orders")
		}
		if o.Status != model.OrderPending {
			return nil, apperr.Conflict("Order is not awaiting payment")
		}
		order = o
		req.AmountCents = o.TotalCents
		req.Currency = o.Currency
		req.Metadata["order_id"] = strconv.FormatUint(o.ID, 10)
	}

	gctx, cancel := context.WithTimeout(ctx, timeouts.Gateway)
	defer cancel()
	intent, err := s.gateway.CreateAndConfirm(gctx, req)
	if err != nil {
		var decline *payment.DeclineError
		if errors.As(err, &decline) {
			s.logger.Info("payment declined", "buyer_id", p.ID, "code", decline.Code)
			return nil, apperr.PaymentFailed(decline.Message, err)
		}
		return nil, apperr.Internal("create payment intent", err)
	}
	s.logger.Info("payment intent created", "buyer_id", p.ID, "intent_id", intent.ID, "status", intent.Status)

	if order != nil && intent.Succeeded() {
		err := s.orders.MarkPaid(ctx, order.ID, intent.ID, s.now())
		switch {
		case errors.Is(err, repository.ErrOrderNotPending):
			// A concurrent payment settled the order first; this intent needs a refund.
			s.logger.Error("order settled by another payment", "order_id", order.ID, "intent_id", intent.ID)
			return nil, apperr.Conflict("Order is not awaiting payment")
		case err != nil:
			s.logger.Error("mark order paid failed", "order_id", order.ID, "intent_id", intent.ID, "err", err)
			return nil, apperr.Internal("mark order paid", err)
		}
	}

	publish(ctx, s.publisher, s.logger, queue.PaymentCreated, queue.PaymentCreatedEvent{
		Meta:            queue.NewMeta(s.now()),
		PaymentIntentID: intent.ID,
		BuyerID:         p.ID,
		OrderID:         in.OrderID,
		AmountCents:     intent.Amount,
		Currency:        intent.Currency,
		Status:          intent.Status,
	})
	return intent, nil
}
