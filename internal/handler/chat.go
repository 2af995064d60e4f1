package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/service"
)

// ChatHandler exposes the chatbot conversation endpoints.  Every session
// operation is scoped to the caller.
type ChatHandler struct {
	chat *service.ChatService
	log  *zap.Logger
}

func NewChatHandler(chat *service.ChatService, log *zap.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, log: log}
}

type sendMessageReq struct {
	SessionID *uint64 `json:"sessionId" validate:"omitempty,gt=0"`
	Message   string  `json:"message" validate:"required,max=2000"`
}

type sessionTitleReq struct {
	Title string `json:"title" validate:"max=255"`
}

type renameSessionReq struct {
	Title string `json:"title" validate:"required,max=255"`
}

type searchReq struct {
	Q string `query:"q" validate:"required,min=2,max=200"`
}

// SendMessage answers a message, creating a session when none is given.
// Chatbot data failures still produce a 200 with an apology as the reply.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Message = strings.TrimSpace(req.Message)
	if valid, err := validate(c, &req); !valid {
		return err
	}
	uid, _ := getUserID(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.chat.SendMessage(ctx, uid, req.SessionID, req.Message)
	if err != nil {
		return failErr(c, h.log, err, "send message")
	}
	return success(c, http.StatusOK, res)
}

// ListSessions returns the caller's sessions with message counts.
func (h *ChatHandler) ListSessions(c echo.Context) error {
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	sessions, err := h.chat.ListSessions(ctx, uid)
	if err != nil {
		return failErr(c, h.log, err, "list sessions")
	}
	return successList(c, sessions)
}

// CreateSession starts an empty session.
func (h *ChatHandler) CreateSession(c echo.Context) error {
	var req sessionTitleReq
	if valid, err := bindAndValidate(c, &req); !valid {
		return err
	}
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	s, err := h.chat.CreateSession(ctx, uid, req.Title)
	if err != nil {
		return failErr(c, h.log, err, "create session")
	}
	return success(c, http.StatusCreated, s)
}

// SessionMessages returns a session and its messages, oldest first.
func (h *ChatHandler) SessionMessages(c echo.Context) error {
	id, valid := parseID(c, "sessionId")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid session id")
	}
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.chat.SessionMessages(ctx, id, uid)
	if err != nil {
		return failErr(c, h.log, err, "session messages")
	}
	return success(c, http.StatusOK, res)
}

// UpdateSession renames a session.
func (h *ChatHandler) UpdateSession(c echo.Context) error {
	id, valid := parseID(c, "sessionId")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid session id")
	}
	var req renameSessionReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid request body")
	}
	req.Title = strings.TrimSpace(req.Title)
	if valid, err := validate(c, &req); !valid {
		return err
	}
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	s, err := h.chat.RenameSession(ctx, id, uid, req.Title)
	if err != nil {
		return failErr(c, h.log, err, "rename session")
	}
	return successMessage(c, "Session updated successfully", s)
}

// DeleteSession removes a session and its messages.
func (h *ChatHandler) DeleteSession(c echo.Context) error {
	id, valid := parseID(c, "sessionId")
	if !valid {
		return fail(c, http.StatusBadRequest, "Invalid session id")
	}
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.chat.DeleteSession(ctx, id, uid); err != nil {
		return failErr(c, h.log, err, "delete session")
	}
	return successMessage(c, "Session deleted successfully", nil)
}

// Stats counts the caller's sessions and messages.
func (h *ChatHandler) Stats(c echo.Context) error {
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	st, err := h.chat.Stats(ctx, uid)
	if err != nil {
		return failErr(c, h.log, err, "chat stats")
	}
	return success(c, http.StatusOK, st)
}

// Search finds the caller's messages containing ?q=.
func (h *ChatHandler) Search(c echo.Context) error {
	req := searchReq{Q: strings.TrimSpace(c.QueryParam("q"))}
	if valid, err := validate(c, &req); !valid {
		return err
	}
	uid, _ := getUserID(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	found, err := h.chat.Search(ctx, uid, req.Q)
	if err != nil {
		return failErr(c, h.log, err, "search messages")
	}
	return successList(c, found)
}
