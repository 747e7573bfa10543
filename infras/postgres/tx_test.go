package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roadbook/config"
	"roadbook/infras/postgres"
)

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "serialization failure", err: &pq.Error{Code: "40001"}, want: true},
		{name: "deadlock", err: &pq.Error{Code: "40P01"}, want: true},
		{name: "unique violation", err: &pq.Error{Code: "23505"}, want: true},
		{name: "wrapped serialization failure", err: fmt.Errorf("failed to debit slot: %w", &pq.Error{Code: "40001"}), want: true},
		{name: "check violation", err: &pq.Error{Code: "23514"}},
		{name: "invalid text representation", err: &pq.Error{Code: "22P02"}},
		{name: "plain error", err: errors.New("connection reset")},
		{name: "nil", err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postgres.IsRetryable(tt.err))
		})
	}
}

func newTransactor(t *testing.T) (postgres.Transactor, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.DB.Postgres.TxMaxRetry = 3

	return postgres.NewTransactor(&postgres.Connection{Write: sqlx.NewDb(db, "sqlmock")}, cfg), mock
}

func TestTransactor_WithTx(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		setupMock func(mock sqlmock.Sqlmock)
		fn        func(calls int) error
		wantCalls int
		wantErr   error
		wantPqErr string
	}{
		{
			name: "commits on success",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn:        func(int) error { return nil },
			wantCalls: 1,
		},
		{
			name: "unique violation retried then committed",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn: func(calls int) error {
				if calls == 1 {
					return fmt.Errorf("failed to create slot: %w", &pq.Error{Code: "23505"})
				}

				return nil
			},
			wantCalls: 2,
		},
		{
			name: "serialization failure on commit retried",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectCommit().WillReturnError(&pq.Error{Code: "40001"})
				mock.ExpectBegin()
				mock.ExpectCommit()
			},
			fn:        func(int) error { return nil },
			wantCalls: 2,
		},
		{
			name: "retries exhausted",
			setupMock: func(mock sqlmock.Sqlmock) {
				for range 3 {
					mock.ExpectBegin()
					mock.ExpectRollback()
				}
			},
			fn:        func(int) error { return &pq.Error{Code: "40001"} },
			wantCalls: 3,
			wantErr:   postgres.ErrConflict,
			wantPqErr: "40001",
		},
		{
			name: "other errors roll back once",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn:        func(int) error { return errBoom },
			wantCalls: 1,
			wantErr:   errBoom,
		},
		{
			name: "invalid input is not retried",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectRollback()
			},
			fn:        func(int) error { return &pq.Error{Code: "22P02"} },
			wantCalls: 1,
			wantPqErr: "22P02",
		},
		{
			name: "begin fails",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin().WillReturnError(errBoom)
			},
			fn:        func(int) error { return nil },
			wantCalls: 0,
			wantErr:   errBoom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx, mock := newTransactor(t)
			tt.setupMock(mock)

			calls := 0
			err := tx.WithTx(context.Background(), func(tx *sqlx.Tx) error {
				calls++

				assert.NotNil(t, tx)

				return tt.fn(calls)
			})

			assert.Equal(t, tt.wantCalls, calls)
			require.NoError(t, mock.ExpectationsWereMet())

			if tt.wantErr == nil && tt.wantPqErr == "" {
				require.NoError(t, err)

				return
			}

			require.Error(t, err)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}

			if tt.wantPqErr != "" {
				var pqErr *pq.Error
				require.ErrorAs(t, err, &pqErr)
				assert.Equal(t, tt.wantPqErr, string(pqErr.Code))
			}
		})
	}
}

func TestTransactor_WithTx_Panic(t *testing.T) {
	tx, mock := newTransactor(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "ledger corrupted", func() {
		_ = tx.WithTx(context.Background(), func(*sqlx.Tx) error {
			panic("ledger corrupted")
		})
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactor_WithTx_Deadline(t *testing.T) {
	tx, mock := newTransactor(t)

	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	calls := 0
	err := tx.WithTx(ctx, func(*sqlx.Tx) error {
		calls++

		<-ctx.Done()

		return fmt.Errorf("failed to lock slot: %w", ctx.Err())
	})

	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, calls)

	// database/sql rolls a cancelled transaction back from its own goroutine.
	assert.Eventually(t, func() bool { return mock.ExpectationsWereMet() == nil }, time.Second, 10*time.Millisecond)
}
