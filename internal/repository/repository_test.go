package repository

import (
	"github.com/DATA-DOG/go-sqlmock"
	qt "github.com/frankban/quicktest"
	"github.com/jmoiron/sqlx"
)

// newMock returns a sqlx handle over go-sqlmock and verifies on cleanup that
// every expected statement ran.
func newMock(c *qt.C) (*sqlx.DB, sqlmock.Sqlmock) {
	raw, mock, err := sqlmock.New()
	c.Assert(err, qt.IsNil)
	c.Cleanup(func() {
		c.Check(mock.ExpectationsWereMet(), qt.IsNil)
		_ = raw.Close()
	})
	return sqlx.NewDb(raw, "mysql"), mock
}
