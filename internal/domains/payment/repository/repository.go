package repository

//go:generate go run go.uber.org/mock/mockgen -source=./repository.go -destination=../mocks/repository_mock.go -package=mocks

import (
	"context"
	"localguide/infras/otel"
	"localguide/infras/postgres"
	"localguide/internal/domains/payment/model"
	gDto "localguide/shared/dto"
	gRepo "localguide/shared/repository"

	"github.com/jmoiron/sqlx"
)

type Payment interface {
	Insert(ctx context.Context, model model.Payment) error
	Get(ctx context.Context, filter gDto.FilterGroup, columns ...string) (model.Payment, error)
	GetAll(ctx context.Context, params gDto.QueryParams, filter gDto.FilterGroup, columns ...string) ([]model.Payment, error)
	Count(ctx context.Context, filter gDto.FilterGroup) (int, error)
	Update(ctx context.Context, req map[string]any, filter gDto.FilterGroup) error
	UpdateTx(ctx context.Context, sqltx *sqlx.Tx, req map[string]any, filter gDto.FilterGroup) error
	UpdateCount(ctx context.Context, req map[string]any, filter gDto.FilterGroup) (int64, error)
	Sum(ctx context.Context, expr string, filter gDto.FilterGroup) (float64, error)
}

type repositoryImpl struct {
	gRepo.Repository[model.Payment]
}

func New(db *postgres.Connection, otel otel.Otel) Payment {
	return &repositoryImpl{
		Repository: gRepo.NewRepository[model.Payment](model.EntityName, model.TableName, model.FieldID, db, otel),
	}
}
