package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/handler"
	"github.com/iliyamo/marketplace-api/internal/middleware"
)

// RegisterProducts registers the catalog and product lifecycle endpoints.
// Lifecycle routes use OptionalJWT: an anonymous caller is answered by the
// product policy (403 "Authentication required"), not by the middleware.
func RegisterProducts(e *echo.Echo, p *handler.ProductHandler, jwtSecret string) {
	optional := middleware.OptionalJWT(jwtSecret)

	e.GET("/v1/products", p.List)
	e.GET("/v1/products/:id", p.Get, optional)
	e.POST("/v1/products", p.Create, middleware.JWTAuth(jwtSecret))
	e.GET("/v1/seller/products", p.ListMine, middleware.JWTAuth(jwtSecret))

	e.DELETE("/v1/products/:id", p.Trash, optional)
	e.POST("/v1/products/:id/restore", p.Restore, optional)
	e.DELETE("/v1/products/:id/permanent", p.Purge, optional)
}
