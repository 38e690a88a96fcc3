package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/policy"
)

// RegisterRevenue registers the revenue reports.  sellerCache must key
// entries per user; platformCache serves the admin-wide reports.  The
// policy runs ahead of the cache so a hit is only served to an allowed
// caller.
func RegisterRevenue(e *echo.Echo, r *handler.RevenueHandler, jwtSecret string, sellerCache, platformCache echo.MiddlewareFunc) {
	g := e.Group("/v1/revenue", middleware.JWTAuth(jwtSecret), middleware.RequirePolicy(policy.ViewAllRevenue))
	g.GET("/total", r.Total, platformCache)
	g.GET("/daily", r.Period(model.Daily), platformCache)
	g.GET("/weekly", r.Period(model.Weekly), platformCache)
	g.GET("/monthly", r.Period(model.Monthly), platformCache)
	g.GET("/yearly", r.Period(model.Yearly), platformCache)
	g.GET("/range", r.Range, platformCache)
	g.GET("/sellers", r.PerSeller, platformCache)

	// The seller report shares the prefix but not the admin policy.
	e.GET("/v1/revenue", r.Seller,
		middleware.JWTAuth(jwtSecret), middleware.RequirePolicy(policy.ViewOwnRevenue), sellerCache)
}
