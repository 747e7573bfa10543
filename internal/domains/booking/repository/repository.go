package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	"roadbook/internal/domains/booking/model"
	slotModel "roadbook/internal/domains/slot/model"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/logger"
	gRepo "roadbook/shared/repository"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type Booking interface {
	Get(ctx context.Context, filter gDto.FilterGroup) (model.Booking, error)
	GetForUpdateTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.Booking, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Booking, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	InsertTx(ctx context.Context, sqltx *sqlx.Tx, model model.Booking) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
	GetSummaries(ctx context.Context, userID string) ([]model.Summary, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Booking]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) Booking {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Booking](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetSummaries aggregates every booking of userID with its lines, newest first.
func (r *repositoryImpl) GetSummaries(ctx context.Context, userID string) (res []model.Summary, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking.GetSummaries")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	query, args, err := psql.Select(
		"b.id AS booking_id",
		"b.origin",
		"b.destination",
		"b.created_at",
		"MIN(s.slot_time) AS start_time",
		"MAX(s.slot_time) AS last_slot_time",
		"COUNT(l.id) AS line_count",
		"COUNT(DISTINCT s.road_id) AS road_count",
		"COALESCE(MAX(l.quantity), 0) AS quantity",
	).
		From(model.TableName + " b").
		LeftJoin(model.LineTableName + " l ON l.booking_id = b.id").
		LeftJoin(slotModel.TableName + " s ON s.id = l.slot_id").
		Where(squirrel.Eq{"b.user_id": userID}).
		GroupBy("b.id").
		OrderBy("b.created_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build booking summary query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if err = r.db.Read.SelectContext(ctx, &res, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to get booking summaries: %w", err)
	}

	return res, nil
}
