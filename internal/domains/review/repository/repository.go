package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"localguide/infras/otel"
	"localguide/infras/postgres"
	"localguide/internal/domains/review/model"
	gDto "localguide/shared/dto"
	gRepo "localguide/shared/repository"
)

type Review interface {
	Insert(ctx context.Context, model model.Review) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Review, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Review, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
	Avg(ctx context.Context, expr string, filter gDto.FilterGroup) (float64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Review]
}

func New(db *postgres.Connection, otel otel.Otel) Review {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Review](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
