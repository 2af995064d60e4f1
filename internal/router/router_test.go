package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/chatbot"
	"github.com/iliyamo/envirowatch/internal/config"
	"github.com/iliyamo/envirowatch/internal/handler"
	"github.com/iliyamo/envirowatch/internal/middleware"
	"github.com/iliyamo/envirowatch/internal/service"
	"github.com/iliyamo/envirowatch/internal/service/servicetest"
	"github.com/iliyamo/envirowatch/internal/utils"
)

const secret = "router-secret"

// newTestServer wires the real router.  Only the chat handler has a
// working store; the others are mounted to exercise route guards.
func newTestServer(c *qt.C) *echo.Echo {
	log := zap.NewNop()
	cfg := config.Default()
	cfg.JWTSecret = secret

	chat := service.NewChatService(servicetest.NewChatStore(), chatbot.NewResponder(nil, nil), log)
	return New(Handlers{
		Auth:    handler.NewAuthHandler(cfg, nil, log),
		Points:  handler.NewPointHandler(nil, nil, nil, log),
		Records: handler.NewRecordHandler(nil, nil, nil, nil, log),
		Chat:    handler.NewChatHandler(chat, log),
		Admin:   handler.NewAdminHandler(nil, nil, nil, nil, nil, log),
	}, Options{
		JWTSecret:   secret,
		FrontendURL: "http://localhost:3000",
		RateLimit:   middleware.NewTokenBucket(config.LoadRateLimitConfig(), nil, log),
		Log:         log,
	})
}

func token(c *qt.C, id uint64, role string) string {
	tok, err := utils.NewAccessToken(secret, id, "someone@envirowatch.com", role, 60)
	c.Assert(err, qt.IsNil)
	return tok.Token
}

func send(e *echo.Echo, method, path, bearer, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if bearer != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHelloThroughTheStack(t *testing.T) {
	c := qt.New(t)
	e := newTestServer(c)
	tok := token(c, 3, "user")

	rec := send(e, http.MethodPost, "/api/chat/message", tok, `{"message":"hello"}`)
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Header().Get(echo.HeaderXRequestID), qt.Not(qt.Equals), "")
	var sent struct {
		Data service.ChatResult `json:"data"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &sent), qt.IsNil)
	c.Assert(chatbot.Greetings(), qt.Contains, sent.Data.AssistantMessage.Content)

	rec = send(e, http.MethodGet, "/api/chat/sessions", tok, "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	var listed struct {
		Count int `json:"count"`
		Data  []struct {
			ID           uint64 `json:"id"`
			MessageCount int64  `json:"message_count"`
		} `json:"data"`
	}
	c.Assert(json.Unmarshal(rec.Body.Bytes(), &listed), qt.IsNil)
	c.Assert(listed.Count, qt.Equals, 1)
	c.Assert(listed.Data[0].ID, qt.Equals, sent.Data.SessionID)
	c.Assert(listed.Data[0].MessageCount, qt.Equals, int64(2))

	// sessions belong to their owner
	rec = send(e, http.MethodGet, "/api/chat/sessions", token(c, 4, "user"), "")
	c.Assert(rec.Body.String(), qt.Contains, `"count":0`)
}

func TestRouteGuards(t *testing.T) {
	c := qt.New(t)
	e := newTestServer(c)

	tests := []struct {
		name, method, path, bearer string
		code                       int
		msg                        string
	}{
		{"no token", http.MethodGet, "/api/chat/sessions", "", http.StatusUnauthorized, "Access denied. No token provided."},
		{"bad token", http.MethodGet, "/api/monitoring-points", "garbage", http.StatusUnauthorized, "Invalid or expired token."},
		{"user on admin panel", http.MethodGet, "/api/admin/users", token(c, 3, "user"), http.StatusForbidden, "Access denied. Insufficient permissions."},
		{"user creating point", http.MethodPost, "/api/monitoring-points", token(c, 3, "user"), http.StatusForbidden, "Access denied. Insufficient permissions."},
		{"admin deleting self", http.MethodDelete, "/api/admin/users/1", token(c, 1, "admin"), http.StatusForbidden, "You cannot delete your own account"},
		{"unknown route", http.MethodGet, "/api/nowhere", "", http.StatusNotFound, "Route not found"},
	}
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			rec := send(e, test.method, test.path, test.bearer, "")
			c.Assert(rec.Code, qt.Equals, test.code)
			var body struct {
				Success bool   `json:"success"`
				Message string `json:"message"`
			}
			c.Assert(json.Unmarshal(rec.Body.Bytes(), &body), qt.IsNil)
			c.Assert(body.Success, qt.IsFalse)
			c.Assert(body.Message, qt.Equals, test.msg)
		})
	}
}

func TestHealthEndpoints(t *testing.T) {
	c := qt.New(t)
	e := newTestServer(c)

	rec := send(e, http.MethodGet, "/healthz", "", "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Equals, "ok")

	rec = send(e, http.MethodGet, "/health", "", "")
	c.Assert(rec.Code, qt.Equals, http.StatusOK)
	c.Assert(rec.Body.String(), qt.Contains, "EnviroWatch API is running")
}
