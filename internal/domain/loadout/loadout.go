package loadout

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rules"
)

type SlotType string

const (
	SlotEquipment SlotType = "equipment"
	SlotAspect    SlotType = "aspect"
)

// Manager validates loadout changes against the catalog.
type Manager struct {
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

func (m Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Equip writes itemID into the slot and returns the item it displaced. The
// item must be owned and not worn in any other slot. Inventory is not
// consumed and the displaced item is not returned to it. On rejection the
// state is untouched.
func (m Manager) Equip(state *progression.State, guardianID, itemID string, slot SlotType, index int) (string, error) {
	if err := m.checkGuardian(state, guardianID); err != nil {
		return "", err
	}
	item, ok := m.Catalog.Item(itemID)
	if !ok {
		return "", rules.Reject(rules.CodeUnknownItem, "item %s not found", itemID)
	}
	switch slot {
	case SlotEquipment:
		if item.Type != catalog.ItemEquipment {
			return "", rules.Reject(rules.CodeWrongItemType, "cannot equip %s in equipment slot", m.Catalog.ItemName(itemID))
		}
	case SlotAspect:
		if item.Type != catalog.ItemAspect {
			return "", rules.Reject(rules.CodeWrongItemType, "cannot equip %s in aspect slot", m.Catalog.ItemName(itemID))
		}
		if index < 0 || index >= progression.AspectSlots {
			return "", rules.Reject(rules.CodeInvalidSlot, "invalid aspect slot index %d", index)
		}
	default:
		return "", rules.Reject(rules.CodeInvalidSlot, "unknown slot type %q", slot)
	}
	if state.Count(itemID) <= 0 {
		rej := rules.Reject(rules.CodeInsufficientItems, "%s is not in the inventory", item.Name)
		rej.Missing = []string{item.Name + " 0/1"}
		return "", rej
	}
	target := -1
	if slot == SlotAspect {
		target = index
	}
	if holder, at, ok := wornBy(*state, itemID); ok && (holder != guardianID || at != target) {
		return "", rules.Reject(rules.CodeItemEquipped, "%s is already equipped on %s", item.Name, m.Catalog.GuardianName(holder))
	}

	lo := state.Loadouts[guardianID]
	var displaced string
	if slot == SlotEquipment {
		displaced, lo.Equipment = lo.Equipment, itemID
	} else {
		displaced, lo.Aspects[index] = lo.Aspects[index], itemID
	}
	if state.Loadouts == nil {
		state.Loadouts = map[string]progression.Loadout{}
	}
	state.Loadouts[guardianID] = lo
	m.logger().Debug("item equipped", "guardian_id", guardianID, "item_id", itemID, "slot", slot, "index", index)
	return displaced, nil
}

// Unequip clears a slot and returns its previous occupant, "" when empty.
func (m Manager) Unequip(state *progression.State, guardianID string, slot SlotType, index int) (string, error) {
	if err := m.checkGuardian(state, guardianID); err != nil {
		return "", err
	}
	lo := state.Loadouts[guardianID]
	var previous string
	switch slot {
	case SlotEquipment:
		previous, lo.Equipment = lo.Equipment, ""
	case SlotAspect:
		if index < 0 || index >= progression.AspectSlots {
			return "", rules.Reject(rules.CodeInvalidSlot, "invalid aspect slot index %d", index)
		}
		previous, lo.Aspects[index] = lo.Aspects[index], ""
	default:
		return "", rules.Reject(rules.CodeInvalidSlot, "unknown slot type %q", slot)
	}
	if state.Loadouts == nil {
		state.Loadouts = map[string]progression.Loadout{}
	}
	state.Loadouts[guardianID] = lo
	return previous, nil
}

// wornBy finds the guardian wearing itemID and the slot: -1 for equipment,
// otherwise the aspect index.
func wornBy(state progression.State, itemID string) (string, int, bool) {
	for _, id := range slices.Sorted(maps.Keys(state.Loadouts)) {
		lo := state.Loadouts[id]
		if lo.Equipment == itemID {
			return id, -1, true
		}
		if i := slices.Index(lo.Aspects[:], itemID); i >= 0 {
			return id, i, true
		}
	}
	return "", 0, false
}

func (m Manager) checkGuardian(state *progression.State, guardianID string) error {
	if _, ok := state.Loadouts[guardianID]; ok {
		return nil
	}
	if _, ok := m.Catalog.Guardian(guardianID); ok {
		return nil
	}
	return rules.Reject(rules.CodeUnknownGuardian, "guardian %s not found", guardianID)
}

// Bonus sums the mission-type bonus of every item one guardian wears.
func (m Manager) Bonus(state progression.State, guardianID, missionType string) int {
	total := 0
	for _, id := range state.Loadouts[guardianID].Items() {
		item, ok := m.Catalog.Item(id)
		if !ok {
			m.logger().Warn("equipped item not in catalog", "guardian_id", guardianID, "item_id", id)
			continue
		}
		total += item.MissionBonuses[missionType]
	}
	return total
}

func (m Manager) SquadBonus(state progression.State, squad []string, missionType string) int {
	total := 0
	for _, g := range squad {
		total += m.Bonus(state, g, missionType)
	}
	return total
}

type Check struct {
	Met     bool     `json:"met"`
	Missing []string `json:"missing,omitempty"`
}

// Reason joins every unmet requirement.
func (c Check) Reason() string {
	return strings.Join(c.Missing, "; ")
}

// CheckMissionRequirements validates the mission's equipment subtype, then
// the anomaly gates. Every unmet gate adds its own reason.
func (m Manager) CheckMissionRequirements(state progression.State, squad []string, mission catalog.Mission) Check {
	var missing []string

	if sub := mission.Requirements.EquipmentSubtype; sub != "" {
		if !m.squadWears(state, squad, func(it catalog.Item) bool { return it.Subtype == sub }, true) {
			missing = append(missing, "Mission requires at least one piece of "+capitalize(sub)+" equipment")
		}
	}

	if a := mission.Anomaly; a != nil {
		eff := a.Effects
		if eff.RequiresMinimumGuardians > 0 && len(squad) < eff.RequiresMinimumGuardians {
			missing = append(missing, a.Name+" requires at least "+itoa(eff.RequiresMinimumGuardians)+" Guardians")
		}
		if g := eff.RequiresSpecificGuardian; g != "" && !slices.Contains(squad, g) {
			missing = append(missing, a.Name+" requires "+m.Catalog.GuardianName(g)+" in the squad")
		}
		if et := eff.RequiresEquipmentType; et != "" {
			if !m.squadWears(state, squad, func(it catalog.Item) bool { return it.EquipmentType == et }, false) {
				missing = append(missing, "Requires at least one Guardian equipped with "+titleWords(et)+" equipment")
			}
		}
	}
	return Check{Met: len(missing) == 0, Missing: missing}
}

func (m Manager) squadWears(state progression.State, squad []string, match func(catalog.Item) bool, includeAspects bool) bool {
	for _, g := range squad {
		lo := state.Loadouts[g]
		ids := []string{lo.Equipment}
		if includeAspects {
			ids = lo.Items()
		}
		for _, id := range ids {
			if id == "" {
				continue
			}
			if item, ok := m.Catalog.Item(id); ok && match(item) {
				return true
			}
		}
	}
	return false
}
