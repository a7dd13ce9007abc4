package mocks

import (
	"context"
	"localguide/infras/otel"
)

type nopOtel struct{}

func (nopOtel) NewScope(ctx context.Context, _, _ string) (context.Context, otel.Scope) {
	return ctx, NewScope()
}

func (nopOtel) Shutdown(context.Context) error {
	return nil
}

// NewOtel returns a tracer that records nothing.
func NewOtel() otel.Otel {
	return nopOtel{}
}
