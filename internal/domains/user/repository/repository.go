package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"localguide/infras/otel"
	"localguide/infras/postgres"
	"localguide/internal/domains/user/model"
	gDto "localguide/shared/dto"
	gRepo "localguide/shared/repository"
)

type User interface {
	Insert(ctx context.Context, model model.User) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.User, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.User, error)
	Exist(ctx context.Context, filter gDto.FilterGroup) (bool, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	Delete(ctx context.Context, filter gDto.FilterGroup) error
}

// Profile reads users together with their guide rating aggregate.
type Profile interface {
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Profile, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Profile, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.User]
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otel otel.Otel) User {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.User](model.EntityName, model.TableName, model.FieldID, db, otel),
		db:         db,
		otel:       otel,
	}
}

type profileRepositoryImpl struct {
	gRepo.Repository[model.Profile]
}

func NewProfile(db *postgres.Connection, otel otel.Otel) Profile {
	return &profileRepositoryImpl{
		Repository: gRepo.NewRepository[model.Profile](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
