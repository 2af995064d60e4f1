package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/envirowatch/internal/model"
)

const (
	sessionColumns = "id, user_id, title, created_at, updated_at"
	messageColumns = "id, session_id, role, content, created_at"
)

// ChatRepo stores chat sessions and their messages.  Session lookups are
// always scoped to the owning user.
type ChatRepo struct{ db *sqlx.DB }

func NewChatRepo(db *sqlx.DB) *ChatRepo { return &ChatRepo{db: db} }

// CreateSession starts a session for a user.
func (r *ChatRepo) CreateSession(ctx context.Context, userID uint64, title string) (*model.ChatSession, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO chat_sessions (user_id, title) VALUES (?, ?)", userID, title)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert session id: %w", err)
	}
	return r.GetSession(ctx, uint64(id), userID)
}

// GetSession returns the session if it belongs to userID.
func (r *ChatRepo) GetSession(ctx context.Context, id, userID uint64) (*model.ChatSession, error) {
	var s model.ChatSession
	err := r.db.GetContext(ctx, &s,
		"SELECT "+sessionColumns+" FROM chat_sessions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return nil, notFound(err, ErrSessionNotFound)
	}
	return &s, nil
}

// ListSessions returns a user's sessions with message counts, most recently
// active first.
func (r *ChatRepo) ListSessions(ctx context.Context, userID uint64) ([]model.ChatSessionSummary, error) {
	out := []model.ChatSessionSummary{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT cs.id, cs.user_id, cs.title, cs.created_at, cs.updated_at,
		       COUNT(cm.id) AS message_count,
		       MAX(cm.created_at) AS last_message_at
		FROM chat_sessions cs
		LEFT JOIN chat_messages cm ON cm.session_id = cs.id
		WHERE cs.user_id = ?
		GROUP BY cs.id
		ORDER BY cs.updated_at DESC, cs.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}

// UpdateSessionTitle renames a session owned by userID.
func (r *ChatRepo) UpdateSessionTitle(ctx context.Context, id, userID uint64, title string) (*model.ChatSession, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE chat_sessions SET title = ? WHERE id = ? AND user_id = ?", title, id, userID)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrSessionNotFound
	}
	return r.GetSession(ctx, id, userID)
}

// DeleteSession removes a session owned by userID and, through the foreign
// key, its messages.
func (r *ChatRepo) DeleteSession(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM chat_sessions WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// CreateMessage appends a message and bumps the session's updated_at so it
// moves to the top of the session list.
func (r *ChatRepo) CreateMessage(ctx context.Context, sessionID uint64, role model.MessageRole, content string) (*model.ChatMessage, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO chat_messages (session_id, role, content) VALUES (?, ?, ?)", sessionID, role, content)
	if err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert message id: %w", err)
	}
	if _, err := r.db.ExecContext(ctx,
		"UPDATE chat_sessions SET updated_at = CURRENT_TIMESTAMP(3) WHERE id = ?", sessionID); err != nil {
		return nil, fmt.Errorf("touch session: %w", err)
	}

	var m model.ChatMessage
	if err := r.db.GetContext(ctx, &m, "SELECT "+messageColumns+" FROM chat_messages WHERE id = ?", id); err != nil {
		return nil, fmt.Errorf("load message: %w", err)
	}
	return &m, nil
}

// ListMessages returns every message of a session in creation order.  The id
// breaks ties between messages created in the same millisecond.
func (r *ChatRepo) ListMessages(ctx context.Context, sessionID uint64) ([]model.ChatMessage, error) {
	out := []model.ChatMessage{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+messageColumns+" FROM chat_messages WHERE session_id = ? ORDER BY created_at ASC, id ASC", sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	return out, nil
}

// RecentMessages returns the last limit messages of a session, oldest first.
func (r *ChatRepo) RecentMessages(ctx context.Context, sessionID uint64, limit int) ([]model.ChatMessage, error) {
	out := []model.ChatMessage{}
	err := r.db.SelectContext(ctx, &out,
		"SELECT "+messageColumns+" FROM chat_messages WHERE session_id = ? ORDER BY created_at DESC, id DESC LIMIT ?",
		sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent messages: %w", err)
	}
	slices.Reverse(out)
	return out, nil
}

// Stats counts a user's sessions and messages.
func (r *ChatRepo) Stats(ctx context.Context, userID uint64) (model.ChatStats, error) {
	var s model.ChatStats
	err := r.db.GetContext(ctx, &s, `
		SELECT COUNT(DISTINCT cs.id) AS total_sessions,
		       COUNT(cm.id) AS total_messages,
		       COALESCE(SUM(CASE WHEN cm.role = 'user' THEN 1 ELSE 0 END), 0) AS user_messages,
		       COALESCE(SUM(CASE WHEN cm.role = 'assistant' THEN 1 ELSE 0 END), 0) AS assistant_messages
		FROM chat_sessions cs
		LEFT JOIN chat_messages cm ON cm.session_id = cs.id
		WHERE cs.user_id = ?`, userID)
	if err != nil {
		return s, fmt.Errorf("chat stats: %w", err)
	}
	return s, nil
}

// SearchLimit caps the number of search results.
const SearchLimit = 50

// Search finds the user's messages containing q, case-insensitively, newest
// first.
func (r *ChatRepo) Search(ctx context.Context, userID uint64, q string) ([]model.ChatSearchResult, error) {
	out := []model.ChatSearchResult{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT cm.id, cm.session_id, cm.role, cm.content, cm.created_at, cs.title AS session_title
		FROM chat_messages cm
		JOIN chat_sessions cs ON cs.id = cm.session_id
		WHERE cs.user_id = ? AND LOWER(cm.content) LIKE ?
		ORDER BY cm.created_at DESC, cm.id DESC
		LIMIT ?`, userID, "%"+escapeLike(q)+"%", SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search messages: %w", err)
	}
	return out, nil
}

// escapeLike escapes the LIKE wildcards in a user-supplied search term and
// lower-cases it to match LOWER(column).
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(strings.ToLower(s))
}
