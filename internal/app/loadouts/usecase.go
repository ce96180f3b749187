package loadouts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/loadout"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rules"
)

var ErrInvalidRequest = errors.New("invalid loadout request")

type UseCase struct {
	Store   ports.StateStore
	Catalog *catalog.Catalog
	Metrics ports.OutcomeMetrics
	Logger  *slog.Logger
}

func (u UseCase) manager() loadout.Manager {
	return loadout.Manager{Catalog: u.Catalog, Logger: u.Logger}
}

func (u UseCase) Get(ctx context.Context, guardianID string) (Summary, error) {
	if strings.TrimSpace(guardianID) == "" {
		return Summary{}, ErrInvalidRequest
	}
	if _, ok := u.Catalog.Guardian(guardianID); !ok {
		return Summary{}, ports.ErrNotFound
	}
	state, err := u.Store.View(ctx)
	if err != nil {
		return Summary{}, err
	}
	return u.summarize(state, guardianID), nil
}

// Equip places an item in a slot. The displaced item id is reported and is
// not returned to the inventory.
func (u UseCase) Equip(ctx context.Context, req EquipRequest) (ChangeResponse, error) {
	if strings.TrimSpace(req.GuardianID) == "" || strings.TrimSpace(req.ItemID) == "" {
		return ChangeResponse{}, ErrInvalidRequest
	}
	var resp ChangeResponse
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		prev, err := u.manager().Equip(state, req.GuardianID, req.ItemID, loadout.SlotType(req.SlotType), req.SlotIndex)
		if err != nil {
			return err
		}
		resp = ChangeResponse{Loadout: u.summarize(*state, req.GuardianID), Previous: prev}
		return nil
	})
	return resp, u.observe(err)
}

func (u UseCase) Unequip(ctx context.Context, req UnequipRequest) (ChangeResponse, error) {
	if strings.TrimSpace(req.GuardianID) == "" {
		return ChangeResponse{}, ErrInvalidRequest
	}
	var resp ChangeResponse
	err := u.Store.Mutate(ctx, func(state *progression.State) error {
		prev, err := u.manager().Unequip(state, req.GuardianID, loadout.SlotType(req.SlotType), req.SlotIndex)
		if err != nil {
			return err
		}
		resp = ChangeResponse{Loadout: u.summarize(*state, req.GuardianID), Previous: prev}
		return nil
	})
	return resp, u.observe(err)
}

func (u UseCase) observe(err error) error {
	if r, ok := rules.AsRejection(err); ok && u.Metrics != nil {
		u.Metrics.RecordRejection(r.Code)
	}
	return err
}

func (u UseCase) summarize(state progression.State, guardianID string) Summary {
	lo := state.Loadouts[guardianID]
	out := Summary{
		GuardianID:   guardianID,
		GuardianName: u.Catalog.GuardianName(guardianID),
		Equipment:    u.slot(lo.Equipment),
		Aspects:      make([]*Slot, 0, progression.AspectSlots),
	}
	for _, a := range lo.Aspects {
		out.Aspects = append(out.Aspects, u.slot(a))
	}
	return out
}

func (u UseCase) slot(itemID string) *Slot {
	if itemID == "" {
		return nil
	}
	return &Slot{ItemID: itemID, Name: u.Catalog.ItemName(itemID)}
}
