package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/middleware"
	"github.com/iliyamo/marketplace-api/internal/service"
)

// ProductHandler exposes the product catalog and its lifecycle.
type ProductHandler struct {
	Products *service.ProductService
}

func NewProductHandler(p *service.ProductService) *ProductHandler {
	return &ProductHandler{Products: p}
}

// Create handles POST /v1/products.
func (h *ProductHandler) Create(c echo.Context) error {
	var req service.CreateProductInput
	if err := c.Bind(&req); err != nil {
		return errInvalidBody
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	prod, err := h.Products.Create(ctx, middleware.PrincipalFrom(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, success(echo.Map{"product": prod}))
}

// Get handles GET /v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	prod, err := h.Products.Get(ctx, middleware.PrincipalFrom(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(echo.Map{"product": prod}))
}

// List handles GET /v1/products?page=&pageSize=.
func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	page, size := queryInt(c, "page", 1), queryInt(c, "pageSize", 20)
	out, err := h.Products.ListPublic(ctx, page, size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(echo.Map{"products": out, "page": page}))
}

// ListMine handles GET /v1/seller/products?status=.
func (h *ProductHandler) ListMine(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	out, err := h.Products.ListOwn(ctx, middleware.PrincipalFrom(c), c.QueryParam("status"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, success(echo.Map{"products": out}))
}

// Trash handles DELETE /v1/products/:id.
func (h *ProductHandler) Trash(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Products.Trash(ctx, middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product moved to trash"})
}

// Restore handles POST /v1/products/:id/restore.
func (h *ProductHandler) Restore(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Products.Restore(ctx, middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product restored successfully"})
}

// Purge handles DELETE /v1/products/:id/permanent.
func (h *ProductHandler) Purge(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Products.Purge(ctx, middleware.PrincipalFrom(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product permanently deleted successfully"})
}
