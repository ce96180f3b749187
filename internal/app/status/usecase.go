package status

import (
	"context"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
)

type UseCase struct {
	Store   ports.StateStore
	Catalog *catalog.Catalog
}

func (u UseCase) Execute(ctx context.Context, _ Request) (Response, error) {
	state, err := u.Store.View(ctx)
	if err != nil {
		return Response{}, err
	}
	return Response{State: state, Statistics: Calculate(u.Catalog, state)}, nil
}
