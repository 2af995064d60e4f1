package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/middleware"
	"github.com/iliyamo/envirowatch/internal/repository"
)

// requestTimeout bounds the database work of one request.
const requestTimeout = 5 * time.Second

// ----- response envelope -----

func success(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func successList[T any](c echo.Context, data []T) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "count": len(data)})
}

func successMessage(c echo.Context, msg string, data any) error {
	body := echo.Map{"success": true, "message": msg}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(http.StatusOK, body)
}

func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "message": msg})
}

func failFields(c echo.Context, fields []FieldError) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "message": "Validation failed", "errors": fields})
}

// failErr maps repository sentinels onto status codes.  Anything else is
// logged and reported as a generic 500.
func failErr(c echo.Context, log *zap.Logger, err error, op string) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return fail(c, http.StatusNotFound, "User not found")
	case errors.Is(err, repository.ErrPointNotFound):
		return fail(c, http.StatusNotFound, "Monitoring point not found")
	case errors.Is(err, repository.ErrRecordNotFound):
		return fail(c, http.StatusNotFound, "Monitoring record not found")
	case errors.Is(err, repository.ErrSessionNotFound):
		return fail(c, http.StatusNotFound, "Chat session not found")
	case errors.Is(err, repository.ErrEmailExists):
		return fail(c, http.StatusConflict, "User with this email already exists")
	case errors.Is(err, repository.ErrInvalidParameter):
		return fail(c, http.StatusBadRequest, "Invalid parameter")
	}
	log.Error(op+" failed",
		zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
		zap.Error(err))
	return fail(c, http.StatusInternalServerError, "Internal server error")
}

// getUserID returns the authenticated user's id; JWTAuth guarantees it on
// protected routes.
func getUserID(c echo.Context) (uint64, bool) {
	return middleware.UserID(c)
}

// parseID reads a positive integer path parameter.
func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	return id, err == nil && id > 0
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrUserNotFound) ||
		errors.Is(err, repository.ErrPointNotFound) ||
		errors.Is(err, repository.ErrRecordNotFound) ||
		errors.Is(err, repository.ErrSessionNotFound)
}
