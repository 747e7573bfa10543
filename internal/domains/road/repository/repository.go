package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	"roadbook/internal/domains/road/model"
	gDto "roadbook/shared/dto"
	gRepo "roadbook/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Road interface {
	Get(ctx context.Context, filter gDto.FilterGroup) (model.Road, error)
	GetTx(ctx context.Context, sqltx *sqlx.Tx, filter gDto.FilterGroup) (model.Road, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup) ([]model.Road, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Road]
}

func New(db *postgres.Connection, otel otel.Otel) Road {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Road](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
