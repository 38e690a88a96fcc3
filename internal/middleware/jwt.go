package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"strconv" // formatting the user id stored for downstream middleware
	"strings" // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/marketplace-api/internal/apperr" // error taxonomy rendered by the HTTP error handler
	"github.com/iliyamo/marketplace-api/internal/model"  // principal type
	"github.com/iliyamo/marketplace-api/internal/utils"  // access token verification
)

// Context keys set by the JWT middlewares.
const (
	PrincipalKey = "principal"
	UserIDKey    = "user_id"
	RoleKey      = "role"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// stores the caller as a *model.Principal under PrincipalKey.  The user id
// and role are also stored as strings under UserIDKey and RoleKey for the
// cache and rate limit key builders.  Requests without a valid token are
// rejected with 401.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return authenticate(secret, true)
}

// OptionalJWT behaves like JWTAuth when an Authorization header is present,
// and lets the request through without a principal otherwise.  Routes whose
// response to a missing principal is not a plain 401 use it and leave the
// decision to the policy.
func OptionalJWT(secret string) echo.MiddlewareFunc {
	return authenticate(secret, false)
}

func authenticate(secret string, required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A valid header should start with "Bearer " followed by the JWT.
			auth := c.Request().Header.Get("Authorization")
			if auth == "" && !required {
				return next(c)
			}
			if !strings.HasPrefix(auth, "Bearer ") {
				return apperr.Unauthenticated("missing bearer token")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			p, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return apperr.Unauthenticated("invalid token")
			}
			c.Set(PrincipalKey, p)
			c.Set(UserIDKey, strconv.FormatUint(p.ID, 10))
			c.Set(RoleKey, string(p.Role))
			return next(c)
		}
	}
}

// PrincipalFrom returns the principal stored by JWTAuth or OptionalJWT, or
// nil for anonymous requests.
func PrincipalFrom(c echo.Context) *model.Principal {
	p, _ := c.Get(PrincipalKey).(*model.Principal)
	return p
}
