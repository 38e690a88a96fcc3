package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
)

// RegisterOrders registers buyer orders and payments under /v1.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler, pay *handler.PaymentHandler, jwtSecret string) {
	g := e.Group("/v1/orders", middleware.JWTAuth(jwtSecret))
	g.POST("", o.Create)
	g.GET("", o.ListMine)

	// A missing principal must yield the payment policy's 401 before the
	// body is looked at.
	e.POST("/v1/payments", pay.Create, middleware.OptionalJWT(jwtSecret))
}
