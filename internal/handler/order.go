package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/service"
)

// OrderHandler exposes buyer orders.
type OrderHandler struct {
	Orders *service.OrderService
}

func NewOrderHandler(o *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: o}
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	var req service.CreateOrderInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	o, err := h.Orders.Create(ctx, middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, success(echo.Map{"order": o}))
}

// ListMine handles GET /v1/orders.
func (h *OrderHandler) ListMine(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Orders.ListMine(ctx, middleware.PrincipalFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(echo.Map{"orders": out}))
}
