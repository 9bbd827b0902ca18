package middleware

// identity.go holds the context keys written by JWTAuth and the helpers
// that read them back.  Handlers and the rate limiter both use them.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user id stored by JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	v, ok := c.Get(ctxUserID).(uint64)
	return v, ok && v != 0
}

// Role returns the role claim stored by JWTAuth.
func Role(c echo.Context) string {
	v, _ := c.Get(ctxRole).(string)
	return v
}

// userKey identifies the caller for rate limiting.  It returns "anon"
// when no user is authenticated.
func userKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
