package rolls

import (
	"log/slog"
	"math"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

// RNG is the only source of randomness. *math/rand/v2.Rand satisfies it.
type RNG interface {
	Float64() float64
}

// Anomaly pool weights by rarity.
var anomalyWeights = map[catalog.Rarity]int{
	catalog.RarityCommon:   6,
	catalog.RarityUncommon: 3,
	catalog.RarityRare:     1,
}

const defaultAnomalyWeight = 1

type RaritySplit struct {
	Common         int `json:"common"`
	RareOrUncommon int `json:"rare_or_uncommon"`
}

// RollRarityDistribution splits n spawn slots: floor(n/3) rare-or-uncommon,
// the rest common. Negative n counts as zero.
func RollRarityDistribution(n int) RaritySplit {
	if n < 0 {
		n = 0
	}
	rare := n / 3
	return RaritySplit{Common: n - rare, RareOrUncommon: rare}
}

// Engine bundles the catalog-driven rolls.
type Engine struct {
	Catalog *catalog.Catalog
	RNG     RNG
	Logger  *slog.Logger
}

func (e Engine) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// IntN draws uniformly from [0,n). n <= 0 returns 0.
func IntN(rng RNG, n int) int {
	if n <= 0 {
		return 0
	}
	i := int(rng.Float64() * float64(n))
	if i >= n {
		i = n - 1
	}
	return i
}

// Between draws uniformly from [lo,hi]. A reversed range collapses to lo.
func Between(rng RNG, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return IntN(rng, hi-lo+1) + lo
}

// RollPercent succeeds when a uniform draw in [0,100) is at most chance.
// A chance of zero or less never succeeds.
func RollPercent(rng RNG, chance float64) bool {
	if chance <= 0 {
		return false
	}
	return rng.Float64()*100 <= chance
}

// Shuffle permutes items in place (Fisher-Yates).
func Shuffle[T any](rng RNG, items []T) {
	for i := len(items) - 1; i > 0; i-- {
		j := IntN(rng, i+1)
		items[i], items[j] = items[j], items[i]
	}
}

func (e Engine) RollRarityTier() catalog.Rarity {
	if e.RNG.Float64() < 0.5 {
		return catalog.RarityUncommon
	}
	return catalog.RarityRare
}

// RollType picks a type by cumulative percentage. When the roll lands past
// the last bucket the first declared type wins.
func RollType(rng RNG, dist catalog.Distribution) string {
	if len(dist) == 0 {
		return ""
	}
	roll := rng.Float64() * 100
	cumulative := 0.0
	for _, w := range dist {
		cumulative += w.Percent
		if roll < cumulative {
			return w.Type
		}
	}
	return dist[0].Type
}

func (e Engine) RollType(dist catalog.Distribution) string {
	return RollType(e.RNG, dist)
}

// SelectActivity matches (type, rarity), then type only, then anything.
func (e Engine) SelectActivity(activityType string, rarity catalog.Rarity) (catalog.Activity, bool) {
	all := e.Catalog.Activities
	if len(all) == 0 {
		return catalog.Activity{}, false
	}
	var exact, byType []catalog.Activity
	for _, a := range all {
		if a.Type != activityType {
			continue
		}
		byType = append(byType, a)
		if a.Rarity == rarity {
			exact = append(exact, a)
		}
	}
	if len(exact) > 0 {
		return exact[IntN(e.RNG, len(exact))], true
	}
	if len(byType) > 0 {
		e.logger().Warn("activity selection fallback to type only", "type", activityType, "rarity", rarity)
		return byType[IntN(e.RNG, len(byType))], true
	}
	e.logger().Warn("activity selection fallback to full catalog", "type", activityType, "rarity", rarity)
	return all[IntN(e.RNG, len(all))], true
}

// RollAnomaly draws uniformly from the rarity-weighted pool.
func (e Engine) RollAnomaly() (catalog.Anomaly, bool) {
	var pool []int
	for i, a := range e.Catalog.Anomalies {
		w, ok := anomalyWeights[a.Rarity]
		if !ok {
			w = defaultAnomalyWeight
		}
		for n := 0; n < w; n++ {
			pool = append(pool, i)
		}
	}
	if len(pool) == 0 {
		return catalog.Anomaly{}, false
	}
	return e.Catalog.Anomalies[pool[IntN(e.RNG, len(pool))]], true
}

// RollRewards rolls each spec independently. Quantities are scaled by
// multiplier and never drop below one.
func RollRewards(rng RNG, specs []catalog.RewardSpec, multiplier float64) []progression.ItemQuantity {
	if multiplier <= 0 {
		multiplier = 1
	}
	var out []progression.ItemQuantity
	for _, spec := range specs {
		if !RollPercent(rng, spec.DropChance) {
			continue
		}
		qty := Between(rng, spec.Min, spec.Max)
		final := int(math.Floor(float64(qty) * multiplier))
		if final < 1 {
			final = 1
		}
		out = append(out, progression.ItemQuantity{Item: spec.Item, Quantity: final})
	}
	return out
}

func (e Engine) RollRewards(specs []catalog.RewardSpec, multiplier float64) []progression.ItemQuantity {
	return RollRewards(e.RNG, specs, multiplier)
}
