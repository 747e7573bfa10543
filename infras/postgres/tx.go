package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roadbook/config"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	pqErrorCodeSerializationFailure = "40001"
	pqErrorCodeDeadlockDetected     = "40P01"
	pqErrorCodeUniqueViolation      = "23505"

	defaultTxTimeout = 10 * time.Second
	defaultTxRetry   = 3
)

// ErrConflict is returned once a transaction kept failing on concurrent writers after every retry.
var ErrConflict = errors.New("transaction conflict")

// Transactor runs a unit of work inside one serializable transaction.
//
// fn may be invoked more than once: a serialization failure, a deadlock or a unique violation
// raised by a concurrent writer rolls the attempt back and runs fn again from scratch. Anything
// fn captures must therefore be reset at the start of every call.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error
}

type transactor struct {
	db       *sqlx.DB
	timeout  time.Duration
	maxRetry int
}

func NewTransactor(conn *Connection, cfg *config.Config) Transactor {
	timeout := time.Duration(cfg.DB.Postgres.TxTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultTxTimeout
	}

	maxRetry := cfg.DB.Postgres.TxMaxRetry
	if maxRetry <= 0 {
		maxRetry = defaultTxRetry
	}

	return &transactor{
		db:       conn.Write,
		timeout:  timeout,
		maxRetry: maxRetry,
	}
}

func (t *transactor) WithTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	var err error

	for attempt := 1; attempt <= t.maxRetry; attempt++ {
		err = t.run(ctx, fn)
		if err == nil || !IsRetryable(err) {
			return err
		}

		log.Warn().Err(err).Int("attempt", attempt).Msg("Transaction conflicted with a concurrent writer, retrying")
	}

	return fmt.Errorf("%w: %w", ErrConflict, err)
}

func (t *transactor) run(ctx context.Context, fn func(tx *sqlx.Tx) error) (err error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	tx, err := t.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx)
			panic(p)
		}

		if err != nil {
			rollback(tx)

			return
		}

		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("failed to commit transaction: %w", err)
		}
	}()

	return fn(tx)
}

func rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		log.Error().Err(err).Msg("Failed to roll back transaction")
	}
}

// IsRetryable reports whether err was caused by a concurrent writer and the whole
// transaction can be run again.
func IsRetryable(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}

	switch string(pqErr.Code) {
	case pqErrorCodeSerializationFailure, pqErrorCodeDeadlockDetected, pqErrorCodeUniqueViolation:
		return true
	default:
		return false
	}
}
