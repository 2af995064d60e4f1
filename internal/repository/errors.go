// Package repository holds the data accessors over the MySQL pool.  Every
// repository receives the shared *sqlx.DB from its constructor.
//
// The sentinel values below let handlers tell failure scenarios apart with
// errors.Is; every other error is wrapped with the failing operation.
package repository

import (
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrUserNotFound is returned when no user matches the id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailExists is returned when registering an email twice.
	ErrEmailExists = errors.New("email already exists")
	// ErrPointNotFound is returned when no monitoring point matches the id.
	ErrPointNotFound = errors.New("monitoring point not found")
	// ErrRecordNotFound is returned when no monitoring record matches the id.
	ErrRecordNotFound = errors.New("monitoring record not found")
	// ErrSessionNotFound is returned when the chat session does not exist or
	// belongs to another user.
	ErrSessionNotFound = errors.New("chat session not found")
	// ErrInvalidParameter is returned for a time series over an unknown column.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// notFound maps sql.ErrNoRows to the given sentinel and leaves other errors
// untouched.
func notFound(err, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}
