package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/envirowatch/internal/handler"
	"github.com/iliyamo/envirowatch/internal/middleware"
	"github.com/iliyamo/envirowatch/internal/model"
)

// RegisterAdmin registers the admin panel under /api/admin.  All routes
// require the admin role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/api/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(string(model.RoleAdmin)),
	)
	g.GET("/users", h.ListUsers)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id/role", h.UpdateRole)
	g.PUT("/users/:id/status", h.UpdateStatus)
	g.DELETE("/users/:id", h.DeleteUser)

	g.GET("/stats", h.Stats)
	g.GET("/health", h.Health)
	g.DELETE("/records", h.PurgeRecords)
}
