package model

import "time"

// DefaultSessionTitle is given to new sessions and replaced by a prefix of
// the first user message.
const DefaultSessionTitle = "New Chat"

// MessageRole identifies who wrote a chat message.
type MessageRole string

const (
	MessageUser      MessageRole = "user"
	MessageAssistant MessageRole = "assistant"
)

// ChatSession mirrors the `chat_sessions` table.
type ChatSession struct {
	ID        uint64    `db:"id" json:"id"`
	UserID    uint64    `db:"user_id" json:"user_id"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ChatSessionSummary is a session row in the session list.
type ChatSessionSummary struct {
	ChatSession
	MessageCount  int64      `db:"message_count" json:"message_count"`
	LastMessageAt *time.Time `db:"last_message_at" json:"last_message_at"`
}

// ChatMessage mirrors the `chat_messages` table.  Messages are append-only.
type ChatMessage struct {
	ID        uint64      `db:"id" json:"id"`
	SessionID uint64      `db:"session_id" json:"session_id"`
	Role      MessageRole `db:"role" json:"role"`
	Content   string      `db:"content" json:"content"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
}

// ChatSearchResult is a message matched by a search, with its session title.
type ChatSearchResult struct {
	ChatMessage
	SessionTitle string `db:"session_title" json:"session_title"`
}

// ChatStats counts a user's chat activity.
type ChatStats struct {
	TotalSessions     int64 `db:"total_sessions" json:"total_sessions"`
	TotalMessages     int64 `db:"total_messages" json:"total_messages"`
	UserMessages      int64 `db:"user_messages" json:"user_messages"`
	AssistantMessages int64 `db:"assistant_messages" json:"assistant_messages"`
}
