package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	qt "github.com/frankban/quicktest"

	"github.com/iliyamo/envirowatch/internal/model"
)

var (
	sessionCols = []string{"id", "user_id", "title", "created_at", "updated_at"}
	messageCols = []string{"id", "session_id", "role", "content", "created_at"}
)

func TestChatRepoCreateSession(t *testing.T) {
	c := qt.New(t)
	db, mock := newMock(c)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_sessions (user_id, title) VALUES (?, ?)")).
		WithArgs(7, model.DefaultSessionTitle).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_sessions WHERE id = ? AND user_id = ?")).
		WithArgs(3, 7).
		WillReturnRows(sqlmock.NewRows(sessionCols).AddRow(3, 7, model.DefaultSessionTitle, now, now))

	s, err := NewChatRepo(db).CreateSession(context.Background(), 7, model.DefaultSessionTitle)
	c.Assert(err, qt.IsNil)
	c.Assert(s.ID, qt.Equals, uint64(3))
	c.Assert(s.UserID, qt.Equals, uint64(7))
	c.Assert(s.Title, qt.Equals, "New Chat")
}

func TestChatRepoGetSessionOfAnotherUser(t *testing.T) {
	c := qt.New(t)
	db, mock := newMock(c)

	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_sessions WHERE id = ? AND user_id = ?")).
		WithArgs(3, 8).
		WillReturnRows(sqlmock.NewRows(sessionCols))

	_, err := NewChatRepo(db).GetSession(context.Background(), 3, 8)
	c.Assert(err, qt.ErrorIs, ErrSessionNotFound)
}

func TestChatRepoListSessions(t *testing.T) {
	c := qt.New(t)
	db, mock := newMock(c)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("COUNT(cm.id) AS message_count")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows(append(sessionCols, "message_count", "last_message_at")).
			AddRow(4, 7, "Air quality today", now, now, 2, now).
			AddRow(3, 7, "New Chat", now, now, 0, nil))

	sessions, err := NewChatRepo(db).ListSessions(context.Background(), 7)
	c.Assert(err, qt.IsNil)
	c.Assert(sessions, qt.HasLen, 2)
	c.Assert(sessions[0].MessageCount, qt.Equals, int64(2))
	c.Assert(sessions[0].LastMessageAt, qt.IsNotNil)
	c.Assert(sessions[1].LastMessageAt, qt.IsNil)
}

func TestChatRepoCreateMessageTouchesSession(t *testing.T) {
	c := qt.New(t)
	db, mock := newMock(c)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO chat_messages (session_id, role, content) VALUES (?, ?, ?)")).
		WithArgs(3, model.MessageUser, "hello").
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE chat_sessions SET updated_at")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM chat_messages WHERE id = ?")).
		WithArgs(11).
		WillReturnRows(sqlmock.NewRows(messageCols).AddRow(11, 3, "user", "hello", now))

	m, err := NewChatRepo(db).CreateMessage(context.Background(), 3, model.MessageUser, "hello")
	c.Assert(err, qt.IsNil)
	c.Assert(m.ID, qt.Equals, uint64(11))
	c.Assert(m.Role, qt.Equals, model.MessageUser)
}

func TestChatRepoRecentMessagesChronological(t *testing.T) {
	c := qt.New(t)
	db, mock := newMock(c)
	t0 := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC LIMIT ?")).
		WithArgs(3, 10).
		WillReturnRows(sqlmock.NewRows(messageCols).
			AddRow(12, 3, "assistant", "second", t0.Add(time.Second)).
			AddRow(11, 3, "user", "first", t0))

	msgs, err := NewChatRepo(db).RecentMessages(context.Background(), 3, 10)
	c.Assert(err, qt.IsNil)
	c.Assert(msgs, qt.HasLen, 2)
	c.Assert(msgs[0].Content, qt.Equals, "first")
	c.Assert(msgs[1].Content, qt.Equals, "second")
}

func TestChatRepoDeleteMissingSession(t *testing.T) {
	c := qt.New(t)
	db, mock := newMock(c)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM chat_sessions WHERE id = ? AND user_id = ?")).
		WithArgs(9, 7).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := NewChatRepo(db).DeleteSession(context.Background(), 9, 7)
	c.Assert(err, qt.ErrorIs, ErrSessionNotFound)
}

func TestChatRepoSearchEscapesWildcards(t *testing.T) {
	c := qt.New(t)
	db, mock := newMock(c)
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("LOWER(cm.content) LIKE ?")).
		WithArgs(7, `%pm2\_5 %`, SearchLimit).
		WillReturnRows(sqlmock.NewRows(append(messageCols, "session_title")).
			AddRow(11, 3, "user", "PM2_5 levels?", now, "Air"))

	res, err := NewChatRepo(db).Search(context.Background(), 7, "PM2_5 ")
	c.Assert(err, qt.IsNil)
	c.Assert(res, qt.HasLen, 1)
	c.Assert(res[0].SessionTitle, qt.Equals, "Air")
}

func TestEscapeLike(t *testing.T) {
	c := qt.New(t)
	c.Assert(escapeLike(`100% Pure_Water\`), qt.Equals, `100\% pure\_water\\`)
}
