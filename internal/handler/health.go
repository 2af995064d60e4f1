package handler // contains the HTTP handlers of the API

import (
	"net/http" // status codes
	"time"     // timestamp of the status reply

	"github.com/labstack/echo/v4" // web framework
)

// Liveness is the plain probe used by load balancers: it only proves the
// process serves requests.
func Liveness(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

// Status reports that the API is up in the usual JSON envelope.
func Status(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"message":   "EnviroWatch API is running",
		"timestamp": time.Now().UTC(),
	})
}
