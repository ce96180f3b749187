package trophy

import (
	"log/slog"
	"math"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

// Evaluator is a pure function of the catalog and a State snapshot.
type Evaluator struct {
	Catalog *catalog.Catalog
	Logger  *slog.Logger
}

type Status struct {
	ID          string                  `json:"id"`
	Name        string                  `json:"name"`
	Description string                  `json:"description,omitempty"`
	Requirement catalog.RequirementType `json:"requirement_type"`
	Unlocked    bool                    `json:"unlocked"`
	Progress    int                     `json:"progress"`
}

func (e Evaluator) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e Evaluator) IsUnlocked(t catalog.Trophy, state progression.State) bool {
	switch r := t.Requirement.(type) {
	case catalog.MissionsCompleted:
		return len(state.CompletedMissions) >= r.Count
	case catalog.PerfectStreak:
		run, done := state.TotalMissionsRun, len(state.CompletedMissions)
		return run >= r.Count && done >= r.Count && run == done
	case catalog.MissionTypeCount:
		return e.missionTypeCount(state, r.MissionType) >= r.Count
	case catalog.SquadSize:
		return state.HasFlag(SquadSizeFlag(r.Size))
	case catalog.SoloDifficult:
		return state.HasFlag(FlagSoloDifficult)
	case catalog.FullLoadouts:
		return e.fullLoadouts(state) >= r.Count
	case catalog.UniqueCrafts:
		return len(state.CraftedItems) >= r.Count
	case catalog.RareItems:
		return e.rareItems(state) >= r.Count
	case catalog.Conversations:
		return len(state.CompletedConversations) >= r.Count
	case catalog.UnknownRequirement:
		e.logger().Warn("unknown trophy requirement type", "trophy_id", t.ID, "type", r.Type)
		return false
	default:
		e.logger().Warn("trophy without requirement", "trophy_id", t.ID)
		return false
	}
}

// Progress reports completion in [0,100].
func (e Evaluator) Progress(t catalog.Trophy, state progression.State) int {
	switch r := t.Requirement.(type) {
	case catalog.MissionsCompleted:
		return percent(len(state.CompletedMissions), r.Count)
	case catalog.PerfectStreak:
		return percent(state.TotalMissionsRun, r.Count)
	case catalog.MissionTypeCount:
		return percent(e.missionTypeCount(state, r.MissionType), r.Count)
	case catalog.SquadSize, catalog.SoloDifficult:
		if e.IsUnlocked(t, state) {
			return 100
		}
		return 0
	case catalog.FullLoadouts:
		return percent(e.fullLoadouts(state), r.Count)
	case catalog.UniqueCrafts:
		return percent(len(state.CraftedItems), r.Count)
	case catalog.RareItems:
		return percent(e.rareItems(state), r.Count)
	case catalog.Conversations:
		return percent(len(state.CompletedConversations), r.Count)
	default:
		return 0
	}
}

func (e Evaluator) WithStatus(state progression.State) []Status {
	out := make([]Status, 0, len(e.Catalog.Trophies))
	for _, t := range e.Catalog.Trophies {
		st := Status{
			ID:          t.ID,
			Name:        t.Name,
			Description: t.Description,
			Unlocked:    e.IsUnlocked(t, state),
			Progress:    e.Progress(t, state),
		}
		if t.Requirement != nil {
			st.Requirement = t.Requirement.RequirementType()
		}
		out = append(out, st)
	}
	return out
}

// CheckNew returns the trophies unlocked since the last check and records
// them as notified, so each is reported once.
func (e Evaluator) CheckNew(state *progression.State) []catalog.Trophy {
	var fresh []catalog.Trophy
	for _, t := range e.Catalog.Trophies {
		if state.TrophyNotified(t.ID) || !e.IsUnlocked(t, *state) {
			continue
		}
		state.MarkTrophyNotified(t.ID)
		fresh = append(fresh, t)
	}
	return fresh
}

func (e Evaluator) missionTypeCount(state progression.State, missionType string) int {
	n := 0
	for _, id := range state.CompletedMissions {
		if m, ok := e.Catalog.Mission(id); ok && m.MissionType == missionType {
			n++
		}
	}
	return n
}

func (e Evaluator) fullLoadouts(state progression.State) int {
	n := 0
	for _, g := range e.Catalog.Guardians {
		if state.Loadouts[g.ID].Full() {
			n++
		}
	}
	return n
}

func (e Evaluator) rareItems(state progression.State) int {
	n := 0
	for id := range state.Inventory {
		if it, ok := e.Catalog.Item(id); ok && it.Rarity == catalog.RarityRare {
			n++
		}
	}
	return n
}

func percent(have, need int) int {
	if need <= 0 {
		return 100
	}
	p := int(math.Round(float64(have) / float64(need) * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
