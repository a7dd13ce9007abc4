package transaction

//go:generate go run go.uber.org/mock/mockgen -source=./transaction.go -destination=./mocks/transaction_mock.go -package=mocks

import (
	"context"
	"fmt"
	"localguide/infras/otel"
	"localguide/infras/postgres"
	"localguide/shared/constant"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// Transaction runs a unit of work against the write pool. Either every statement issued
// through tx commits or none does.
type Transaction interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) error
}

type transaction struct {
	db   *postgres.Connection
	otel otel.Otel
}

func New(db *postgres.Connection, otl otel.Otel) Transaction {
	return &transaction{
		db:   db,
		otel: otl,
	}
}

func (t *transaction) WithTx(ctx context.Context, fn func(ctx context.Context, tx *sqlx.Tx) error) (err error) {
	ctx, scope := t.otel.NewScope(ctx, constant.OtelRepositoryScopeName, constant.OtelRepositoryScopeName+".WithTx")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	tx, err := t.db.Write.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()

			panic(p)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error().Err(rbErr).Msg("failed to rollback transaction")
		}

		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
