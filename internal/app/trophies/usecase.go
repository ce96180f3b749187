package trophies

import (
	"context"
	"log/slog"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/trophy"
)

type Response struct {
	Trophies []trophy.Status `json:"trophies"`
	Unlocked int             `json:"unlocked"`
	Total    int             `json:"total"`
}

type UseCase struct {
	Store   ports.StateStore
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

func (u UseCase) Execute(ctx context.Context) (Response, error) {
	state, err := u.Store.View(ctx)
	if err != nil {
		return Response{}, err
	}
	list := trophy.Evaluator{Catalog: u.Catalog, Logger: u.Logger}.WithStatus(state)
	resp := Response{Trophies: list, Total: len(list)}
	for _, t := range list {
		if t.Unlocked {
			resp.Unlocked++
		}
	}
	return resp, nil
}
