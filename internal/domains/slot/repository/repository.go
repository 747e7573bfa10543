package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	"roadbook/internal/domains/slot/model"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/logger"
	gRepo "roadbook/shared/repository"
	"roadbook/shared/timezone"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var (
	// ErrInsufficientCapacity means a debit found less available capacity than requested.
	ErrInsufficientCapacity = errors.New("insufficient available capacity")
	// ErrCapacityOverflow means a credit would push available capacity above the slot total.
	ErrCapacityOverflow = errors.New("released quantity exceeds slot capacity")
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Slot interface {
	Get(ctx context.Context, filter gDto.FilterGroup) (model.Slot, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Slot, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.Slot, error)
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Slot) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
	DebitTx(ctx context.Context, sqltx *sqlx.Tx, slotID string, quantity int) error
	CreditTx(ctx context.Context, sqltx *sqlx.Tx, slotID string, quantity int) (roadID string, err error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Slot]
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Slot {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Slot](model.EntityName, model.TableName, model.FieldID, db, otel),
		otel:       otel,
	}
}

// DebitTx takes quantity out of the slot. The guard sits in the statement itself so the
// ledger can never go negative even if a caller skipped the locked read.
func (r *repositoryImpl) DebitTx(ctx context.Context, sqltx *sqlx.Tx, slotID string, quantity int) (err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.DebitTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	query, args, err := psql.Update(model.TableName).
		Set(model.FieldAvailableCapacity, squirrel.Expr(model.FieldAvailableCapacity+" - ?", quantity)).
		Set(constant.FieldModifiedAt, timezone.Now()).
		Where(squirrel.Eq{model.FieldID: slotID}).
		Where(squirrel.GtOrEq{model.FieldAvailableCapacity: quantity}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build debit query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	result, err := sqltx.ExecContext(ctx, query, args...)
	if err != nil {
		logger.ErrorWithStack(err)

		return fmt.Errorf("failed to debit slot %s: %w", slotID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read debit result: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("slot %s: %w", slotID, ErrInsufficientCapacity)
	}

	return nil
}

// CreditTx returns quantity to the slot and reports the road it belongs to.
func (r *repositoryImpl) CreditTx(ctx context.Context, sqltx *sqlx.Tx, slotID string, quantity int) (roadID string, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".slot.CreditTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	query, args, err := psql.Update(model.TableName).
		Set(model.FieldAvailableCapacity, squirrel.Expr(model.FieldAvailableCapacity+" + ?", quantity)).
		Set(constant.FieldModifiedAt, timezone.Now()).
		Where(squirrel.Eq{model.FieldID: slotID}).
		Where(squirrel.Expr(model.FieldAvailableCapacity+" + ? <= "+model.FieldCapacity, quantity)).
		Suffix("RETURNING " + model.FieldRoadID).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("failed to build credit query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	err = sqltx.QueryRowxContext(ctx, query, args...).Scan(&roadID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("slot %s: %w", slotID, ErrCapacityOverflow)
	}

	if err != nil {
		logger.ErrorWithStack(err)

		return "", fmt.Errorf("failed to credit slot %s: %w", slotID, err)
	}

	return roadID, nil
}
