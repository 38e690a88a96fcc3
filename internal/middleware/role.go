package middleware // middleware provides shared request processing for handlers

import (
	"github.com/labstack/echo/v4" // echo provides middleware chaining and context

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/policy"
)

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  It assumes JWTAuth
// ran earlier in the chain.  Requests without a principal get 401; other
// roles get 403.  Operations with their own denial messages are checked by
// the policy package instead.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	allowed := make(map[model.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := PrincipalFrom(c)
			if p == nil {
				return apperr.Unauthenticated("Unauthorized")
			}
			if !allowed[p.Role] {
				return apperr.Forbidden("forbidden")
			}
			return next(c)
		}
	}
}

// RequirePolicy runs policy.Authorize for a before the rest of the chain.
// Routes that cache responses use it so a cached report is never served to
// a caller the policy would reject.
func RequirePolicy(a policy.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := policy.Authorize(PrincipalFrom(c), a, policy.Resource{}); err != nil {
				return err
			}
			return next(c)
		}
	}
}
