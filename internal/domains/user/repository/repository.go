package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"roadbook/infras/otel"
	"roadbook/infras/postgres"
	"roadbook/internal/domains/user/model"
	gDto "roadbook/shared/dto"
	gRepo "roadbook/shared/repository"
)

type User interface {
	Get(ctx context.Context, filter gDto.FilterGroup) (model.User, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
