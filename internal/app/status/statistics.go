package status

import (
	"maps"
	"math"
	"slices"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

var rarityRank = map[catalog.Rarity]int{
	catalog.RarityCommon:   1,
	catalog.RarityUncommon: 2,
	catalog.RarityRare:     3,
}

// Calculate derives the player statistics from a state snapshot.
func Calculate(cat *catalog.Catalog, state progression.State) Statistics {
	return Statistics{
		Missions:  missionStats(cat, state),
		Guardians: guardianStats(cat, state),
		Resources: resourceStats(cat, state),
		Crafting:  craftingStats(state),
		Drops: DropStats{
			Total:               state.Progression.TotalDrops,
			Successful:          state.Progression.SuccessfulDrops,
			Failed:              state.Progression.FailedDrops,
			ActivitiesCompleted: state.Progression.ActivitiesTotal,
		},
	}
}

func missionStats(cat *catalog.Catalog, state progression.State) MissionStats {
	out := MissionStats{
		Completed: len(state.CompletedMissions),
		Run:       state.TotalMissionsRun,
		ByType:    map[string]int{},
	}
	if out.Run > 0 {
		out.SuccessRate = int(math.Round(float64(out.Completed) / float64(out.Run) * 100))
	}
	for _, id := range state.CompletedMissions {
		if m, ok := cat.Mission(id); ok {
			out.ByType[m.MissionType]++
		}
	}
	return out
}

// guardianStats names the guardian with the most missions; ties go to the
// one listed first in the catalog.
func guardianStats(cat *catalog.Catalog, state progression.State) GuardianStats {
	out := GuardianStats{Missions: map[string]int{}}
	best := 0
	for _, g := range cat.Guardians {
		n := state.MissionCounters[g.ID]
		out.Missions[g.ID] = n
		if n > best {
			best = n
			out.MostUsed = g.Name
		}
	}
	return out
}

func resourceStats(cat *catalog.Catalog, state progression.State) ResourceStats {
	var out ResourceStats
	bestRank := 0
	for _, id := range slices.Sorted(maps.Keys(state.Inventory)) {
		n := state.Inventory[id]
		if n <= 0 {
			continue
		}
		out.Total += n
		out.UniqueItems++
		it, ok := cat.Item(id)
		if !ok {
			continue
		}
		if r := rarityRank[it.Rarity]; r > bestRank {
			bestRank = r
			out.RarestItem = it.Name
		}
	}
	return out
}

func craftingStats(state progression.State) CraftingStats {
	out := CraftingStats{Unique: len(state.CraftedItems)}
	for _, n := range state.CraftedItems {
		out.Total += n
	}
	return out
}
