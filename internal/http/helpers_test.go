package http

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sqlDB pairs a sqlmock connection with its expectations. A nil *sqlDB stands
// for a server started without a database.
type sqlDB struct {
	db   *sql.DB
	mock sqlmock.Sqlmock
}

func newSQLDB(t *testing.T) *sqlDB {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return &sqlDB{db: db, mock: mock}
}

func (s *sqlDB) handle() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}
