package router // package router builds the Echo instance and registers the API routes

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/handler"
	"github.com/iliyamo/envirowatch/internal/middleware"
)

// Handlers groups the handlers mounted by New.
type Handlers struct {
	Auth    *handler.AuthHandler
	Points  *handler.PointHandler
	Records *handler.RecordHandler
	Chat    *handler.ChatHandler
	Admin   *handler.AdminHandler
}

// Options carries the cross-cutting pieces of the HTTP stack.
type Options struct {
	JWTSecret   string
	FrontendURL string
	Cache       *middleware.ResponseCache // nil-safe
	RateLimit   echo.MiddlewareFunc       // applied to the chat message endpoint; nil means none
	Log         *zap.Logger
}

// New returns an Echo instance with the global middleware and every API
// route registered.
func New(h Handlers, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = errorHandler(opts.Log)

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(opts.Log))
	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			opts.Log.Error("panic recovered", zap.Error(err), zap.ByteString("stack", stack))
			return err
		},
	}))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{opts.FrontendURL},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("1M"))

	RegisterRoutes(e)
	RegisterAuth(e, h.Auth, opts.JWTSecret)
	RegisterMonitoring(e, h.Points, h.Records, opts.JWTSecret, opts.Cache)
	RegisterChat(e, h.Chat, opts.JWTSecret, opts.RateLimit)
	RegisterAdmin(e, h.Admin, opts.JWTSecret)
	return e
}

// RegisterRoutes registers the routes that need no authentication: the
// liveness probe and the JSON status endpoint.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Liveness)
	e.GET("/health", handler.Status)
}

// RegisterAuth registers registration and login under /api/auth, and the
// profile endpoints behind JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)

	auth := g.Group("", middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
	auth.PUT("/profile", a.UpdateProfile)
}

// errorHandler renders errors that escaped the handlers (unknown routes,
// wrong methods, panics, body limits) in the API envelope.
func errorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		code := http.StatusInternalServerError
		msg := "Internal server error"
		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			msg = fmt.Sprint(he.Message)
			if code == http.StatusNotFound {
				msg = "Route not found"
			}
		} else {
			log.Error("unhandled error", zap.Error(err))
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, echo.Map{"success": false, "message": msg})
		}
		if err != nil {
			log.Warn("write error response", zap.Error(err))
		}
	}
}
