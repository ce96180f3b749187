package drop

import (
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

// seqRNG replays a fixed sequence, repeating the last value.
type seqRNG struct {
	vals []float64
	i    int
}

func (r *seqRNG) Float64() float64 {
	if len(r.vals) == 0 {
		return 0
	}
	if r.i >= len(r.vals) {
		return r.vals[len(r.vals)-1]
	}
	v := r.vals[r.i]
	r.i++
	return v
}

func rng(vals ...float64) *seqRNG { return &seqRNG{vals: vals} }

var crawler = catalog.Activity{
	ID:            "crawler",
	Name:          "Hull Crawler",
	Type:          "combat",
	Rarity:        catalog.RarityCommon,
	Difficulty:    5,
	LootTable:     []catalog.RewardSpec{{Item: "scrap", Min: 3, Max: 3, DropChance: 100}},
	DetectionRisk: 50,
	FleeChance:    50,
	DownRisk:      50,
	Dialogue: map[string]map[catalog.Moment]string{
		"stella":               {catalog.MomentInitiate: "Contact ahead."},
		catalog.DefaultSpeaker: {catalog.MomentEngage: "Steel meets claw."},
	},
}

var hoard = catalog.Activity{
	ID:        "hoard",
	Name:      "Crystal Hoard",
	Type:      "salvage",
	Rarity:    catalog.RarityCommon,
	LootTable: []catalog.RewardSpec{{Item: "crystal", Min: 30, Max: 30, DropChance: 100}},
}

var wreck = catalog.Location{
	ID:                       "wreck",
	Name:                     "Derelict Wreck",
	ActivitySpawnRange:       catalog.SpawnRange{Min: 3, Max: 3},
	ActivityTypeDistribution: catalog.Distribution{{Type: "combat", Percent: 100}},
	MaxActivities:            3,
}

var vault = catalog.Location{
	ID:                 "vault",
	Name:               "Sealed Vault",
	ActivitySpawnRange: catalog.SpawnRange{Min: 1, Max: 2},
	MaxActivities:      5,
	Locked:             true,
	UnlockRequirements: catalog.UnlockRequirements{DropCount: 1, ActivitiesCompleted: 2, SpecificActivities: []string{"crawler"}},
}

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.Tables{
		Items: []catalog.Item{
			{ID: "scrap", Name: "Scrap", Type: catalog.ItemResource},
			{ID: "crystal", Name: "Crystal", Type: catalog.ItemResource},
		},
		Guardians:  []catalog.Guardian{{ID: "stella", Name: "Stella"}, {ID: "vawn", Name: "Vawn"}},
		Activities: []catalog.Activity{crawler, hoard},
		Locations:  []catalog.Location{wreck, vault},
	})
}

func newEngine(r *seqRNG) (Engine, progression.State) {
	cat := testCatalog()
	return Engine{Catalog: cat, RNG: r}, progression.New(cat)
}

func repeat(a catalog.Activity, n int) []catalog.Activity {
	out := make([]catalog.Activity, n)
	for i := range out {
		out[i] = a
	}
	return out
}
