package drops

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/drop"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rolls"
	"shiplife/internal/domain/rules"
	"shiplife/internal/domain/trophy"
)

var ErrInvalidRequest = errors.New("invalid drop request")

type UseCase struct {
	Store    ports.StateStore
	Flusher  ports.Flusher
	Catalog  *catalog.Catalog
	RNG      rolls.RNG
	Sessions *Registry
	Metrics  ports.OutcomeMetrics
	Notifier ports.Notifier
	Logger   *slog.Logger
}

func (u UseCase) engine() drop.Engine {
	return drop.Engine{Catalog: u.Catalog, RNG: u.RNG, Logger: u.Logger}
}

func (u UseCase) logger() *slog.Logger {
	if u.Logger == nil {
		return slog.Default()
	}
	return u.Logger
}

func (u UseCase) Locations(ctx context.Context) (LocationsResponse, error) {
	state, err := u.Store.View(ctx)
	if err != nil {
		return LocationsResponse{}, err
	}
	return LocationsResponse{Locations: u.engine().Locations(state)}, nil
}

// Start lands a guardian at a location. Only one drop may be unfinished.
func (u UseCase) Start(ctx context.Context, req StartRequest) (StepResponse, error) {
	if strings.TrimSpace(req.LocationID) == "" || strings.TrimSpace(req.GuardianID) == "" {
		return StepResponse{}, ErrInvalidRequest
	}
	u.Sessions.mu.Lock()
	defer u.Sessions.mu.Unlock()
	if s, ok := u.Sessions.active(); ok {
		return StepResponse{}, u.observe(rules.Reject(rules.CodeDropInProgress, "drop %s at %s is still running", s.ID, s.LocationName))
	}
	u.Sessions.pruneFinished()

	var resp StepResponse
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		s, step, err := u.engine().Begin(state, req.LocationID, req.GuardianID)
		if err != nil {
			return err
		}
		s.ID = u.Sessions.newID()
		resp = StepResponse{Session: s, Step: step}
		return nil
	})
	if err != nil {
		return StepResponse{}, u.observe(err)
	}
	u.Sessions.put(resp.Session)
	return resp, nil
}

func (u UseCase) Choose(ctx context.Context, req ChoiceRequest) (StepResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.Choice) == "" {
		return StepResponse{}, ErrInvalidRequest
	}
	u.Sessions.mu.Lock()
	defer u.Sessions.mu.Unlock()
	s, ok := u.Sessions.get(req.SessionID)
	if !ok {
		return StepResponse{}, ports.ErrNotFound
	}

	var step drop.Step
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		var err error
		step, err = u.engine().Choose(state, &s, drop.Choice(req.Choice))
		return err
	})
	if err != nil {
		return StepResponse{}, u.observe(err)
	}
	u.Sessions.put(s)
	return StepResponse{Session: s, Step: step}, nil
}

// Extract ends a drop whose extraction has triggered, checks trophies and
// flushes the save.
func (u UseCase) Extract(ctx context.Context, req ExtractRequest) (ExtractResponse, error) {
	if strings.TrimSpace(req.SessionID) == "" {
		return ExtractResponse{}, ErrInvalidRequest
	}
	u.Sessions.mu.Lock()
	defer u.Sessions.mu.Unlock()
	s, ok := u.Sessions.get(req.SessionID)
	if !ok {
		return ExtractResponse{}, ports.ErrNotFound
	}

	var (
		res   drop.Results
		fresh []catalog.Trophy
	)
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		var err error
		res, err = u.engine().Extract(state, &s)
		if err != nil {
			return err
		}
		fresh = trophy.Evaluator{Catalog: u.Catalog, Logger: u.Logger}.CheckNew(state)
		return nil
	})
	if err != nil {
		return ExtractResponse{}, u.observe(err)
	}
	u.Sessions.put(s)

	if u.Metrics != nil {
		u.Metrics.RecordDrop(res.Reason)
	}
	for _, t := range fresh {
		ports.Notify(u.Notifier, ports.NotifyTrophy, "Trophy Unlocked: "+t.Name+"!")
	}
	if u.Flusher != nil {
		if err := u.Flusher.Flush(ctx); err != nil {
			u.logger().Warn("flush after extraction failed", "session_id", s.ID, "err", err)
		}
	}
	return ExtractResponse{Results: res}, nil
}

func (u UseCase) observe(err error) error {
	if r, ok := rules.AsRejection(err); ok && u.Metrics != nil {
		u.Metrics.RecordRejection(r.Code)
	}
	return err
}
