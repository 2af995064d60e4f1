package middleware

// identity.go holds the context keys JWTAuth fills in and the helpers other
// middleware and the handlers use to read them back.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id"
	ContextRole   = "role"
	ContextEmail  = "email"
)

// UserID returns the authenticated user's id.  ok is false for anonymous
// requests.
func UserID(c echo.Context) (id uint64, ok bool) {
	switch v := c.Get(ContextUserID).(type) {
	case uint64:
		return v, v != 0
	case int:
		return uint64(v), v > 0
	case int64:
		return uint64(v), v > 0
	case float64:
		return uint64(v), v > 0
	case string:
		n, err := strconv.ParseUint(v, 10, 64)
		return n, err == nil && n != 0
	}
	return 0, false
}

// Role returns the role claim of the authenticated user, or "".
func Role(c echo.Context) string {
	r, _ := c.Get(ContextRole).(string)
	return r
}

// currentUserID is the user part of rate limit keys: the id, or "anon".
func currentUserID(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}
