package mocks

import (
	"context"
	"roadbook/infras/postgres"

	"github.com/jmoiron/sqlx"
)

type transactorImpl struct {
}

// WithTx implements postgres.Transactor. The unit of work runs once with a nil transaction,
// so it is only usable together with mocked repositories.
func (t *transactorImpl) WithTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

func NewTransactor() postgres.Transactor {
	return &transactorImpl{}
}
