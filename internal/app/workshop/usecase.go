package workshop

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/crafting"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rules"
	"shiplife/internal/domain/trophy"
)

var ErrInvalidRequest = errors.New("invalid workshop request")

type CraftRequest struct {
	WorkstationID string
	RecipeID      string
}

type StationsResponse struct {
	Workstations []crafting.StationStatus `json:"workstations"`
}

type UploadResponse struct {
	BlueprintID string `json:"blueprint_id"`
	Name        string `json:"name"`
}

type UseCase struct {
	Store    ports.StateStore
	Catalog  *catalog.Catalog
	Metrics  ports.OutcomeMetrics
	Notifier ports.Notifier
	Logger   *slog.Logger
}

func (u UseCase) workshop() crafting.Workshop {
	return crafting.Workshop{Catalog: u.Catalog, Logger: u.Logger}
}

func (u UseCase) Stations(ctx context.Context) (StationsResponse, error) {
	state, err := u.Store.View(ctx)
	if err != nil {
		return StationsResponse{}, err
	}
	return StationsResponse{Workstations: u.workshop().Stations(state)}, nil
}

// Craft spends a recipe's cost and re-checks trophies, since crafted items
// feed the unique-crafts and rare-items requirements.
func (u UseCase) Craft(ctx context.Context, req CraftRequest) (crafting.Crafted, error) {
	if strings.TrimSpace(req.WorkstationID) == "" || strings.TrimSpace(req.RecipeID) == "" {
		return crafting.Crafted{}, ErrInvalidRequest
	}
	var (
		out   crafting.Crafted
		fresh []catalog.Trophy
	)
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		var err error
		out, err = u.workshop().Craft(state, req.WorkstationID, req.RecipeID)
		if err != nil {
			return err
		}
		fresh = u.evaluator().CheckNew(state)
		return nil
	})
	if err != nil {
		return crafting.Crafted{}, u.observe(err)
	}
	ports.Notify(u.Notifier, ports.NotifyInfo, "Crafted: "+out.Name)
	u.announce(fresh)
	return out, nil
}

func (u UseCase) Upgrade(ctx context.Context, workstationID string) (crafting.Upgraded, error) {
	if strings.TrimSpace(workstationID) == "" {
		return crafting.Upgraded{}, ErrInvalidRequest
	}
	var out crafting.Upgraded
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		var err error
		out, err = u.workshop().Upgrade(state, workstationID)
		return err
	})
	if err != nil {
		return crafting.Upgraded{}, u.observe(err)
	}
	ports.Notify(u.Notifier, ports.NotifyInfo, "Upgraded to "+out.LevelName+"!")
	return out, nil
}

func (u UseCase) UploadBlueprint(ctx context.Context, blueprintID string) (UploadResponse, error) {
	if strings.TrimSpace(blueprintID) == "" {
		return UploadResponse{}, ErrInvalidRequest
	}
	var name string
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		var err error
		name, err = u.workshop().UploadBlueprint(state, blueprintID)
		return err
	})
	if err != nil {
		return UploadResponse{}, u.observe(err)
	}
	ports.Notify(u.Notifier, ports.NotifyInfo, "Uploaded: "+name)
	return UploadResponse{BlueprintID: blueprintID, Name: name}, nil
}

func (u UseCase) evaluator() trophy.Evaluator {
	return trophy.Evaluator{Catalog: u.Catalog, Logger: u.Logger}
}

func (u UseCase) announce(trophies []catalog.Trophy) {
	for _, t := range trophies {
		ports.Notify(u.Notifier, ports.NotifyTrophy, "Trophy Unlocked: "+t.Name+"!")
	}
}

func (u UseCase) observe(err error) error {
	if r, ok := rules.AsRejection(err); ok {
		if u.Metrics != nil {
			u.Metrics.RecordRejection(r.Code)
		}
		ports.Notify(u.Notifier, ports.NotifyError, r.Reason)
	}
	return err
}
