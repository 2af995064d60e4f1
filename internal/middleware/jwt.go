package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/envirowatch/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject, email and role claims into the request
// context.  Handlers read them through UserID and Role.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return fail(c, http.StatusUnauthorized, "Access denied. No token provided.")
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return fail(c, http.StatusUnauthorized, "Invalid or expired token.")
			}
			id, err := claims.UserID()
			if err != nil {
				return fail(c, http.StatusUnauthorized, "Invalid token claims.")
			}

			c.Set(ContextUserID, id)
			c.Set(ContextRole, claims.Role)
			c.Set(ContextEmail, claims.Email)
			return next(c)
		}
	}
}
