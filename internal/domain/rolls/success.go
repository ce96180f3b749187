package rolls

import (
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/loadout"
	"shiplife/internal/domain/progression"
)

const (
	MinSuccessRate = 5
	MaxSuccessRate = 95
)

// Encounter is anything resolved with a success roll: missions and
// activities.
type Encounter interface {
	EncounterType() string
	EncounterDifficulty() int
	EncounterAnomaly() *catalog.Anomaly
}

var (
	_ Encounter = catalog.Mission{}
	_ Encounter = catalog.Activity{}
)

type SuccessRate struct {
	Base            int `json:"base"`
	LoadoutBonus    int `json:"loadout_bonus"`
	AnomalyModifier int `json:"anomaly_modifier"`
	Final           int `json:"final"`
}

// ComposeSuccessRate clamps base+bonus+modifier into [5,95].
func ComposeSuccessRate(base, bonus, modifier int) SuccessRate {
	return SuccessRate{
		Base:            base,
		LoadoutBonus:    bonus,
		AnomalyModifier: modifier,
		Final:           clamp(base+bonus+modifier, MinSuccessRate, MaxSuccessRate),
	}
}

// CalculateSuccessRate blends difficulty, squad loadouts and the anomaly
// difficulty modifier. A positive modifier makes the encounter harder.
func CalculateSuccessRate(cat *catalog.Catalog, state progression.State, squad []string, enc Encounter) SuccessRate {
	base := 100 - enc.EncounterDifficulty()*10
	bonus := loadout.Manager{Catalog: cat}.SquadBonus(state, squad, enc.EncounterType())
	modifier := 0
	if a := enc.EncounterAnomaly(); a != nil {
		modifier = -a.Effects.DifficultyModifier
	}
	return ComposeSuccessRate(base, bonus, modifier)
}

// RollSuccess draws against rate.Final.
func RollSuccess(rng RNG, rate SuccessRate) bool {
	return RollPercent(rng, float64(rate.Final))
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
