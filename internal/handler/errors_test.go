package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/logging"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		body   any
	}{
		{"domain", apperr.Conflict("Product is already in trash"), http.StatusConflict, errorBody("Product is already in trash")},
		{"payment", apperr.PaymentFailed("Your card was declined.", errors.New("card_declined")), http.StatusPaymentRequired, errorBody("Your card was declined.")},
		{"internal hides cause", apperr.Internal("load product", errors.New("dial tcp: refused")), http.StatusInternalServerError, errorBody("Internal server error")},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, errorBody("Internal server error")},
		{"echo not found", echo.ErrNotFound, http.StatusNotFound, errorBody("Not Found")},
		{"echo 5xx", echo.NewHTTPError(http.StatusBadGateway, "upstream"), http.StatusBadGateway, errorBody("Internal server error")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := render(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.body, body)
		})
	}
}

func TestRenderValidation(t *testing.T) {
	issues := []apperr.Issue{{Field: "name", Tag: "required", Message: "name is required"}}
	status, body := render(apperr.Validation(issues))

	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, echo.Map{"errors": issues}, body)
}

func TestErrorHandlerHead(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodHead, "/v1/products/1", nil)
	rec := httptest.NewRecorder()

	ErrorHandler(logging.Discard())(apperr.NotFound("Product not found"), e.NewContext(req, rec))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

type pingerFunc func() error

func (f pingerFunc) PingContext(_ context.Context) error { return f() }

func TestReady(t *testing.T) {
	e := echo.New()
	for _, tc := range []struct {
		err  error
		code int
	}{{nil, http.StatusOK}, {errors.New("down"), http.StatusServiceUnavailable}} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/readyz", nil), rec)
		err := tc.err
		assert.NoError(t, Ready(pingerFunc(func() error { return err }))(c))
		assert.Equal(t, tc.code, rec.Code)
	}
}
