package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/policy"
	"github.com/iliyamo/marketplace-api/internal/service"
)

// PaymentHandler exposes payment intent creation.
type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(p *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: p}
}

// Create handles POST /v1/payments.  It runs behind OptionalJWT so that a
// missing principal is reported by the payment policy.
func (h *PaymentHandler) Create(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	var req service.CreatePaymentInput
	if err := c.Bind(&req); err != nil {
		// The caller's identity is checked before the body.
		if aerr := policy.Authorize(p, policy.CreatePayment, policy.Resource{}); aerr != nil {
			return aerr
		}
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	intent, err := h.Payments.Create(ctx, p, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":        "success",
		"message":       "Stripe payment successful",
		"paymentIntent": intent.Response(),
	})
}
