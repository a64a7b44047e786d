package core

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T, driverName string) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = mockDB.Close() })
	return sqlx.NewDb(mockDB, driverName), mock
}

func TestWithTx(t *testing.T) {
	ctx := context.Background()
	errBoom := errors.New("boom")

	t.Run("commit", func(t *testing.T) {
		db, mock := newMockDB(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectExec("UPDATE rooms").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := WithTx(ctx, db, func(tx DBExecutor) error {
			_, err := tx.ExecContext(ctx, "UPDATE rooms SET occupied = 0")
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on error", func(t *testing.T) {
		db, mock := newMockDB(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectRollback()

		err := WithTx(ctx, db, func(DBExecutor) error { return errBoom })
		assert.Equal(t, errBoom, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback on panic", func(t *testing.T) {
		db, mock := newMockDB(t, "postgres")
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "oops", func() {
			_ = WithTx(ctx, db, func(DBExecutor) error { panic("oops") })
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin fails", func(t *testing.T) {
		db, mock := newMockDB(t, "postgres")
		mock.ExpectBegin().WillReturnError(errBoom)

		called := false
		err := WithTx(ctx, db, func(DBExecutor) error { called = true; return nil })
		assert.Equal(t, errBoom, errors.Cause(err))
		assert.False(t, called)
	})
}

func TestForUpdate(t *testing.T) {
	for driver, want := range map[string]string{"postgres": " FOR UPDATE", "pgx": " FOR UPDATE", "sqlite": ""} {
		t.Run(driver, func(t *testing.T) {
			db, _ := newMockDB(t, driver)
			assert.Equal(t, want, ForUpdate(db))
		})
	}
}

func TestOrderBy(t *testing.T) {
	allowed := map[string]string{"number": "room_number", "sharing": "sharing"}

	tests := []struct {
		name      string
		orderings []DBOrdering
		want      string
	}{
		{name: "fallback", want: " ORDER BY room_number ASC"},
		{name: "unknown fields are dropped", orderings: []DBOrdering{{Field: "password"}}, want: " ORDER BY room_number ASC"},
		{
			name:      "mapped columns",
			orderings: []DBOrdering{{Field: "sharing"}, {Field: "number", Ascending: true}},
			want:      " ORDER BY sharing DESC, room_number ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderBy(tt.orderings, allowed, "room_number ASC"))
		})
	}
}
