// Package servicetest provides in-memory stand-ins for the stores used by
// package service.
package servicetest

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/envirowatch/internal/model"
	"github.com/iliyamo/envirowatch/internal/repository"
)

// ChatStore is an in-memory service.ChatStore.  Timestamps come from a
// clock that advances one millisecond per write, so ordering is stable.
type ChatStore struct {
	mu       sync.Mutex
	now      time.Time
	nextID   uint64
	sessions map[uint64]*model.ChatSession
	messages []model.ChatMessage

	// FailCreateMessage makes CreateMessage fail for the given role.
	FailCreateMessage model.MessageRole
}

func NewChatStore() *ChatStore {
	return &ChatStore{
		now:      time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		sessions: map[uint64]*model.ChatSession{},
	}
}

func (s *ChatStore) tick() time.Time {
	s.now = s.now.Add(time.Millisecond)
	s.nextID++
	return s.now
}

func (s *ChatStore) CreateSession(_ context.Context, userID uint64, title string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	cs := &model.ChatSession{ID: s.nextID, UserID: userID, Title: title, CreatedAt: now, UpdatedAt: now}
	s.sessions[cs.ID] = cs
	out := *cs
	return &out, nil
}

func (s *ChatStore) GetSession(_ context.Context, id, userID uint64) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[id]
	if !ok || cs.UserID != userID {
		return nil, repository.ErrSessionNotFound
	}
	out := *cs
	return &out, nil
}

func (s *ChatStore) ListSessions(_ context.Context, userID uint64) ([]model.ChatSessionSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ChatSessionSummary{}
	for _, cs := range s.sessions {
		if cs.UserID != userID {
			continue
		}
		sum := model.ChatSessionSummary{ChatSession: *cs}
		for _, m := range s.messages {
			if m.SessionID == cs.ID {
				sum.MessageCount++
				at := m.CreatedAt
				sum.LastMessageAt = &at
			}
		}
		out = append(out, sum)
	}
	slices.SortFunc(out, func(a, b model.ChatSessionSummary) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return int(b.ID) - int(a.ID)
	})
	return out, nil
}

func (s *ChatStore) UpdateSessionTitle(_ context.Context, id, userID uint64, title string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[id]
	if !ok || cs.UserID != userID {
		return nil, repository.ErrSessionNotFound
	}
	cs.Title = title
	out := *cs
	return &out, nil
}

func (s *ChatStore) DeleteSession(_ context.Context, id, userID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cs, ok := s.sessions[id]
	if !ok || cs.UserID != userID {
		return repository.ErrSessionNotFound
	}
	delete(s.sessions, id)
	s.messages = slices.DeleteFunc(s.messages, func(m model.ChatMessage) bool { return m.SessionID == id })
	return nil
}

func (s *ChatStore) CreateMessage(_ context.Context, sessionID uint64, role model.MessageRole, content string) (*model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if role == s.FailCreateMessage {
		return nil, errors.New("insert failed")
	}
	cs, ok := s.sessions[sessionID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	now := s.tick()
	m := model.ChatMessage{ID: s.nextID, SessionID: sessionID, Role: role, Content: content, CreatedAt: now}
	s.messages = append(s.messages, m)
	cs.UpdatedAt = now
	return &m, nil
}

func (s *ChatStore) ListMessages(_ context.Context, sessionID uint64) ([]model.ChatMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []model.ChatMessage{}
	for _, m := range s.messages {
		if m.SessionID == sessionID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *ChatStore) RecentMessages(ctx context.Context, sessionID uint64, limit int) ([]model.ChatMessage, error) {
	all, _ := s.ListMessages(ctx, sessionID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (s *ChatStore) Stats(_ context.Context, userID uint64) (model.ChatStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st model.ChatStats
	for _, cs := range s.sessions {
		if cs.UserID == userID {
			st.TotalSessions++
		}
	}
	for _, m := range s.messages {
		cs, ok := s.sessions[m.SessionID]
		if !ok || cs.UserID != userID {
			continue
		}
		st.TotalMessages++
		if m.Role == model.MessageUser {
			st.UserMessages++
		} else {
			st.AssistantMessages++
		}
	}
	return st, nil
}

func (s *ChatStore) Search(_ context.Context, userID uint64, q string) ([]model.ChatSearchResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q = strings.ToLower(q)
	out := []model.ChatSearchResult{}
	for i := len(s.messages) - 1; i >= 0 && len(out) < repository.SearchLimit; i-- {
		m := s.messages[i]
		cs, ok := s.sessions[m.SessionID]
		if !ok || cs.UserID != userID || !strings.Contains(strings.ToLower(m.Content), q) {
			continue
		}
		out = append(out, model.ChatSearchResult{ChatMessage: m, SessionTitle: cs.Title})
	}
	return out, nil
}
