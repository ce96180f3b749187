package missions

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/mission"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rolls"
	"shiplife/internal/domain/rules"
)

var ErrInvalidRequest = errors.New("invalid mission request")

// errUnchanged aborts a mutation that had nothing to write.
var errUnchanged = errors.New("board unchanged")

type UseCase struct {
	Store    ports.StateStore
	Catalog  *catalog.Catalog
	RNG      rolls.RNG
	Metrics  ports.OutcomeMetrics
	Notifier ports.Notifier
	Logger   *slog.Logger
}

func (u UseCase) orchestrator() mission.Orchestrator {
	return mission.Orchestrator{Catalog: u.Catalog, RNG: u.RNG, Logger: u.Logger}
}

func (u UseCase) Available(ctx context.Context) (AvailableResponse, error) {
	state, err := u.Store.View(ctx)
	if err != nil {
		return AvailableResponse{}, err
	}
	return AvailableResponse{Missions: u.orchestrator().Available(state)}, nil
}

// Board returns the displayed missions, persisting the board only when it
// had to be topped up or pruned.
func (u UseCase) Board(ctx context.Context) (BoardResponse, error) {
	var board []catalog.Mission
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		var changed bool
		board, changed = u.orchestrator().Board(state)
		if !changed {
			return errUnchanged
		}
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		return BoardResponse{}, err
	}
	return BoardResponse{Missions: board}, nil
}

func (u UseCase) Launch(ctx context.Context, req LaunchRequest) (LaunchResponse, error) {
	if strings.TrimSpace(req.MissionID) == "" {
		return LaunchResponse{}, ErrInvalidRequest
	}
	var out mission.Outcome
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		var err error
		out, err = u.orchestrator().Launch(state, req.MissionID, req.Squad)
		return err
	})
	if err != nil {
		if r, ok := rules.AsRejection(err); ok && u.Metrics != nil {
			u.Metrics.RecordRejection(r.Code)
		}
		return LaunchResponse{}, err
	}
	if u.Metrics != nil {
		u.Metrics.RecordMission(out.MissionType, out.Success)
	}
	u.announce(out.NewTrophies)
	return LaunchResponse{Outcome: out}, nil
}

func (u UseCase) announce(trophies []catalog.Trophy) {
	for _, t := range trophies {
		ports.Notify(u.Notifier, ports.NotifyTrophy, "Trophy Unlocked: "+t.Name+"!")
	}
}
