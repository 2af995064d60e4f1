// Package service holds the application services that sit between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/iliyamo/envirowatch/internal/model"
)

const (
	// HistoryLimit is the number of recent messages handed to the responder.
	HistoryLimit = 10
	// TitleLength is the longest title derived from a message, in runes.
	TitleLength = 50
)

// ChatStore persists sessions and messages.  Session operations are scoped
// to the owning user.
type ChatStore interface {
	CreateSession(ctx context.Context, userID uint64, title string) (*model.ChatSession, error)
	GetSession(ctx context.Context, id, userID uint64) (*model.ChatSession, error)
	ListSessions(ctx context.Context, userID uint64) ([]model.ChatSessionSummary, error)
	UpdateSessionTitle(ctx context.Context, id, userID uint64, title string) (*model.ChatSession, error)
	DeleteSession(ctx context.Context, id, userID uint64) error
	CreateMessage(ctx context.Context, sessionID uint64, role model.MessageRole, content string) (*model.ChatMessage, error)
	ListMessages(ctx context.Context, sessionID uint64) ([]model.ChatMessage, error)
	RecentMessages(ctx context.Context, sessionID uint64, limit int) ([]model.ChatMessage, error)
	Stats(ctx context.Context, userID uint64) (model.ChatStats, error)
	Search(ctx context.Context, userID uint64, q string) ([]model.ChatSearchResult, error)
}

// Responder produces the assistant reply to a message.
type Responder interface {
	Respond(ctx context.Context, message string, history []model.ChatMessage) string
}

// ChatResult is the outcome of one exchange.
type ChatResult struct {
	SessionID        uint64             `json:"sessionId"`
	UserMessage      *model.ChatMessage `json:"userMessage"`
	AssistantMessage *model.ChatMessage `json:"assistantMessage"`
}

// SessionMessages is a session together with its messages in order.
type SessionMessages struct {
	Session  *model.ChatSession  `json:"session"`
	Messages []model.ChatMessage `json:"messages"`
}

// ChatService runs conversations.  It is stateless; every call is a
// sequence of independent store round trips.
type ChatService struct {
	store     ChatStore
	responder Responder
	log       *zap.Logger
}

func NewChatService(store ChatStore, responder Responder, log *zap.Logger) *ChatService {
	return &ChatService{store: store, responder: responder, log: log}
}

// SendMessage records message in the given session, or in a new one when
// sessionID is nil, and stores the assistant's reply.  A session still
// carrying the default title is renamed after the message.
func (s *ChatService) SendMessage(ctx context.Context, userID uint64, sessionID *uint64, message string) (*ChatResult, error) {
	var (
		session *model.ChatSession
		err     error
	)
	if sessionID != nil {
		session, err = s.store.GetSession(ctx, *sessionID, userID)
	} else {
		session, err = s.store.CreateSession(ctx, userID, model.DefaultSessionTitle)
	}
	if err != nil {
		return nil, err
	}

	userMsg, err := s.store.CreateMessage(ctx, session.ID, model.MessageUser, message)
	if err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}
	history, err := s.store.RecentMessages(ctx, session.ID, HistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	reply := s.responder.Respond(ctx, message, history)
	assistantMsg, err := s.store.CreateMessage(ctx, session.ID, model.MessageAssistant, reply)
	if err != nil {
		return nil, fmt.Errorf("save assistant message: %w", err)
	}

	if session.Title == model.DefaultSessionTitle {
		if _, err := s.store.UpdateSessionTitle(ctx, session.ID, userID, TitleFromMessage(message)); err != nil {
			s.log.Warn("rename chat session failed", zap.Uint64("session_id", session.ID), zap.Error(err))
		}
	}

	return &ChatResult{SessionID: session.ID, UserMessage: userMsg, AssistantMessage: assistantMsg}, nil
}

// TitleFromMessage derives a session title from a message: the first 50
// runes, with "..." appended when the message was longer.
func TitleFromMessage(message string) string {
	message = strings.TrimSpace(message)
	if utf8.RuneCountInString(message) <= TitleLength {
		return message
	}
	return string([]rune(message)[:TitleLength]) + "..."
}

// CreateSession starts an empty session.  An empty title means the default.
func (s *ChatService) CreateSession(ctx context.Context, userID uint64, title string) (*model.ChatSession, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultSessionTitle
	}
	return s.store.CreateSession(ctx, userID, title)
}

func (s *ChatService) ListSessions(ctx context.Context, userID uint64) ([]model.ChatSessionSummary, error) {
	return s.store.ListSessions(ctx, userID)
}

// SessionMessages returns a session owned by userID with all its messages.
func (s *ChatService) SessionMessages(ctx context.Context, sessionID, userID uint64) (*SessionMessages, error) {
	session, err := s.store.GetSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	msgs, err := s.store.ListMessages(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	return &SessionMessages{Session: session, Messages: msgs}, nil
}

func (s *ChatService) RenameSession(ctx context.Context, sessionID, userID uint64, title string) (*model.ChatSession, error) {
	return s.store.UpdateSessionTitle(ctx, sessionID, userID, strings.TrimSpace(title))
}

func (s *ChatService) DeleteSession(ctx context.Context, sessionID, userID uint64) error {
	return s.store.DeleteSession(ctx, sessionID, userID)
}

func (s *ChatService) Stats(ctx context.Context, userID uint64) (model.ChatStats, error) {
	return s.store.Stats(ctx, userID)
}

func (s *ChatService) Search(ctx context.Context, userID uint64, q string) ([]model.ChatSearchResult, error) {
	return s.store.Search(ctx, userID, strings.TrimSpace(q))
}
