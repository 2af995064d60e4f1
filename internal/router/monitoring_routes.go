package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/envirowatch/internal/handler"
	"github.com/iliyamo/envirowatch/internal/middleware"
	"github.com/iliyamo/envirowatch/internal/model"
)

// RegisterMonitoring registers the monitoring point and record endpoints.
// Every route needs a token; point writes need the admin role.  The
// dashboard-style reads go through the response cache.
func RegisterMonitoring(e *echo.Echo, p *handler.PointHandler, r *handler.RecordHandler, jwtSecret string, cache *middleware.ResponseCache) {
	cached := cache.Middleware()
	admin := middleware.RequireRole(string(model.RoleAdmin))

	points := e.Group("/api/monitoring-points", middleware.JWTAuth(jwtSecret))
	points.GET("", p.List)
	points.GET("/stats/by-type", p.StatsByType, cached)
	points.GET("/:id", p.Get)
	points.POST("", p.Create, admin)
	points.PUT("/:id", p.Update, admin)
	points.DELETE("/:id", p.Delete, admin)

	records := e.Group("/api/monitoring-records", middleware.JWTAuth(jwtSecret))
	records.GET("", r.List)
	records.GET("/latest", r.Latest, cached)
	records.GET("/stats/dashboard", r.Dashboard, cached)
	records.GET("/stats/:pointId", r.PointStats, cached)
	records.GET("/timeseries", r.TimeSeries)
	records.GET("/:id", r.Get)
	records.POST("", r.Create)
}
