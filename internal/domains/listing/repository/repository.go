package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"localguide/infras/otel"
	"localguide/infras/postgres"
	"localguide/internal/domains/listing/model"
	gDto "localguide/shared/dto"
	gRepo "localguide/shared/repository"
)

type Listing interface {
	Insert(ctx context.Context, model model.Listing) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Listing, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Listing, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

type repositoryImpl struct {
	gRepo.Repository[model.Listing]
}

func New(db *postgres.Connection, otel otel.Otel) Listing {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Listing](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
