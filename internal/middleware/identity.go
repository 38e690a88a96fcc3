package middleware

// identity.go defines helpers shared across middleware files.  userID pulls
// the caller id stored by the JWT middlewares; anonymous callers map to a
// fixed placeholder so they share one cache or rate limit bucket per key.

import "github.com/labstack/echo/v4"

// userID returns the authenticated user id, or anon when the request has
// no principal.
func userID(c echo.Context, anon string) string {
	if v, ok := c.Get(UserIDKey).(string); ok && v != "" {
		return v
	}
	return anon
}
