package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/marketplace-api/internal/apperr"
)

// ErrorHandler renders every error returned by handlers and middleware.
// Domain errors keep their status and message; validation errors list their
// issues; anything else becomes a 500 whose cause is only logged.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, body := render(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Request().Method,
				"path", c.Path(),
				"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
				"err", err)
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("write error response failed", "err", err)
		}
	}
}

func render(err error) (int, any) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		switch ae.Kind {
		case apperr.KindValidation:
			return http.StatusBadRequest, echo.Map{"errors": ae.Issues}
		case apperr.KindInternal:
			return http.StatusInternalServerError, errorBody("Internal server error")
		}
		return ae.Kind.HTTPStatus(), errorBody(ae.Message)
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if m, ok := he.Message.(string); ok && m != "" {
			msg = m
		} else if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		if he.Code >= http.StatusInternalServerError {
			msg = "Internal server error"
		}
		return he.Code, errorBody(msg)
	}
	return http.StatusInternalServerError, errorBody("Internal server error")
}

func errorBody(msg string) echo.Map {
	return echo.Map{"status": "error", "message": msg}
}
