package repository

//go:generate go run go.uber.org/mock/mockgen -source=./line.go -destination=../mocks/line_mock.go -package=mocks

import (
	"context"
	"fmt"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	"roadbook/internal/domains/booking/model"
	"roadbook/shared"
	"roadbook/shared/constant"
	gDto "roadbook/shared/dto"
	"roadbook/shared/logger"
	gRepo "roadbook/shared/repository"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Line interface {
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.BookingLine, error)
	GetAllTx(ctx context.Context, sqltx *sqlx.Tx, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.BookingLine, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	ExistTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (bool, error)
	InsertBulkTx(ctx context.Context, sqltx *sqlx.Tx, models []model.BookingLine) error
	DeleteTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) error
	GetDetails(ctx context.Context, bookingID string) ([]model.LineDetail, error)
	CountByBooking(ctx context.Context, bookingIDs []string) (map[string]int, error)
}

type lineRepositoryImpl struct {
	gRepo.Repository[model.BookingLine]
	details gRepo.Repository[model.LineDetail]
	db      *postgres.Connection
	otel    otel.Otel
}

func NewLine(db *postgres.Connection, otel otel.Otel) Line {
	return &lineRepositoryImpl{
		Repository: gRepo.NewRepository[model.BookingLine](model.LineEntityName, model.LineTableName, model.LineFieldID, db, otel),
		details:    gRepo.NewRepository[model.LineDetail](model.LineEntityName, model.LineTableName, model.LineFieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

// GetDetails returns the lines of a booking with slot time and road name, earliest slot first.
func (r *lineRepositoryImpl) GetDetails(ctx context.Context, bookingID string) ([]model.LineDetail, error) {
	params := gDto.QueryParams{SortBy: "road_booking_slots.slot_time", SortDir: gDto.SortDirAsc}

	return r.details.GetAll(ctx, params, shared.FilterByID(bookingID, model.LineFieldBookingID, model.LineTableName)) //nolint:wrapcheck
}

type lineCount struct {
	BookingID string `db:"booking_id"`
	Total     int    `db:"total"`
}

// CountByBooking counts lines per booking. Bookings without lines are absent from the result.
func (r *lineRepositoryImpl) CountByBooking(ctx context.Context, bookingIDs []string) (res map[string]int, err error) {
	ctx, scope := r.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".booking_line.CountByBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	res = make(map[string]int, len(bookingIDs))
	if len(bookingIDs) == 0 {
		return res, nil
	}

	query, args, err := psql.Select(model.LineFieldBookingID, "COUNT(*) AS total").
		From(model.LineTableName).
		Where(squirrel.Eq{model.LineFieldBookingID: bookingIDs}).
		GroupBy(model.LineFieldBookingID).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build line count query: %w", err)
	}

	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	var counts []lineCount
	if err = r.db.Read.SelectContext(ctx, &counts, query, args...); err != nil {
		logger.ErrorWithStack(err)

		return nil, fmt.Errorf("failed to count booking lines: %w", err)
	}

	for _, c := range counts {
		res[c.BookingID] = c.Total
	}

	return res, nil
}
