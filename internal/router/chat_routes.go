package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/envirowatch/internal/handler"
	"github.com/iliyamo/envirowatch/internal/middleware"
)

// RegisterChat registers the chatbot endpoints for any signed-in user.
// rateLimit, when set, guards the message endpoint only.
func RegisterChat(e *echo.Echo, h *handler.ChatHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/api/chat", middleware.JWTAuth(jwtSecret))

	var limited []echo.MiddlewareFunc
	if rateLimit != nil {
		limited = append(limited, rateLimit)
	}
	g.POST("/message", h.SendMessage, limited...)

	g.GET("/sessions", h.ListSessions)
	g.POST("/sessions", h.CreateSession)
	g.GET("/sessions/:sessionId/messages", h.SessionMessages)
	g.PUT("/sessions/:sessionId", h.UpdateSession)
	g.DELETE("/sessions/:sessionId", h.DeleteSession)
	g.GET("/stats", h.Stats)
	g.GET("/search", h.Search)
}
