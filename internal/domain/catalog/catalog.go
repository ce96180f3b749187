package catalog

import (
	"fmt"
	"log/slog"
	"math"
)

// Tables is the raw content as it is read from disk.
type Tables struct {
	Items        []Item        `json:"items"`
	Missions     []Mission     `json:"missions"`
	Activities   []Activity    `json:"activities"`
	Guardians    []Guardian    `json:"guardians"`
	Anomalies    []Anomaly     `json:"anomalies"`
	Locations    []Location    `json:"locations"`
	Trophies     []Trophy      `json:"trophies"`
	Workstations []Workstation `json:"workstations"`
}

// Catalog is the read-only, indexed view over Tables. It is never mutated
// after New returns.
type Catalog struct {
	Tables

	Logger *slog.Logger

	items        map[string]int
	missions     map[string]int
	activities   map[string]int
	guardians    map[string]int
	anomalies    map[string]int
	locations    map[string]int
	workstations map[string]int
}

func New(t Tables) *Catalog {
	c := &Catalog{
		Tables:       t,
		items:        indexBy(t.Items, func(v Item) string { return v.ID }),
		missions:     indexBy(t.Missions, func(v Mission) string { return v.ID }),
		activities:   indexBy(t.Activities, func(v Activity) string { return v.ID }),
		guardians:    indexBy(t.Guardians, func(v Guardian) string { return v.ID }),
		anomalies:    indexBy(t.Anomalies, func(v Anomaly) string { return v.ID }),
		locations:    indexBy(t.Locations, func(v Location) string { return v.ID }),
		workstations: indexBy(t.Workstations, func(v Workstation) string { return v.ID }),
	}
	return c
}

func indexBy[T any](rows []T, key func(T) string) map[string]int {
	out := make(map[string]int, len(rows))
	for i, r := range rows {
		k := key(r)
		if _, dup := out[k]; dup {
			continue
		}
		out[k] = i
	}
	return out
}

func (c *Catalog) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Catalog) Item(id string) (Item, bool) {
	i, ok := c.items[id]
	if !ok {
		return Item{}, false
	}
	return c.Items[i], true
}

func (c *Catalog) Mission(id string) (Mission, bool) {
	i, ok := c.missions[id]
	if !ok {
		return Mission{}, false
	}
	return c.Missions[i], true
}

func (c *Catalog) Activity(id string) (Activity, bool) {
	i, ok := c.activities[id]
	if !ok {
		return Activity{}, false
	}
	return c.Activities[i], true
}

func (c *Catalog) Guardian(id string) (Guardian, bool) {
	i, ok := c.guardians[id]
	if !ok {
		return Guardian{}, false
	}
	return c.Guardians[i], true
}

func (c *Catalog) Anomaly(id string) (Anomaly, bool) {
	i, ok := c.anomalies[id]
	if !ok {
		return Anomaly{}, false
	}
	return c.Anomalies[i], true
}

func (c *Catalog) Location(id string) (Location, bool) {
	i, ok := c.locations[id]
	if !ok {
		return Location{}, false
	}
	return c.Locations[i], true
}

func (c *Catalog) Workstation(id string) (Workstation, bool) {
	i, ok := c.workstations[id]
	if !ok {
		return Workstation{}, false
	}
	return c.Workstations[i], true
}

// ItemName resolves a display name, falling back to the raw id.
func (c *Catalog) ItemName(id string) string {
	if item, ok := c.Item(id); ok && item.Name != "" {
		return item.Name
	}
	c.logger().Warn("unknown item reference", "item_id", id)
	return id
}

// GuardianName resolves a display name, falling back to the raw id.
func (c *Catalog) GuardianName(id string) string {
	if g, ok := c.Guardian(id); ok && g.Name != "" {
		return g.Name
	}
	c.logger().Warn("unknown guardian reference", "guardian_id", id)
	return id
}

func (c *Catalog) GuardianIDs() []string {
	out := make([]string, 0, len(c.Guardians))
	for _, g := range c.Guardians {
		out = append(out, g.ID)
	}
	return out
}

// StartingBlueprints lists blueprint items flagged as known from the start.
func (c *Catalog) StartingBlueprints() []string {
	var out []string
	for _, it := range c.Items {
		if it.Type == ItemBlueprint && it.UnlockedAtStart {
			out = append(out, it.ID)
		}
	}
	return out
}

// Validate reports content misconfiguration. None of the findings are fatal.
func (c *Catalog) Validate() []string {
	var warnings []string
	warn := func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	}

	checkRewards := func(owner string, specs []RewardSpec) {
		for _, r := range specs {
			if _, ok := c.items[r.Item]; !ok {
				warn("%s: reward references unknown item %q", owner, r.Item)
			}
			if r.Min > r.Max {
				warn("%s: reward %q has min %d > max %d", owner, r.Item, r.Min, r.Max)
			}
			if r.DropChance < 0 || r.DropChance > 100 {
				warn("%s: reward %q drop chance %.1f outside [0,100]", owner, r.Item, r.DropChance)
			}
		}
	}

	for _, m := range c.Missions {
		owner := "mission " + m.ID
		if m.Difficulty < 0 || m.Difficulty > 10 {
			warn("%s: difficulty %d outside [0,10]", owner, m.Difficulty)
		}
		for _, ref := range m.Prerequisites.MissionsCompleted {
			if _, ok := c.missions[ref]; !ok {
				warn("%s: prerequisite references unknown mission %q", owner, ref)
			}
		}
		checkRewards(owner, m.Rewards.Success)
		checkRewards(owner, m.Rewards.Failure)
	}
	for _, a := range c.Activities {
		checkRewards("activity "+a.ID, a.LootTable)
	}
	for _, l := range c.Locations {
		owner := "location " + l.ID
		if sum := l.ActivityTypeDistribution.Sum(); math.Abs(sum-100) > 0.001 {
			warn("%s: activity type distribution sums to %.1f, expected 100", owner, sum)
		}
		if l.ActivitySpawnRange.Min > l.ActivitySpawnRange.Max {
			warn("%s: spawn range min %d > max %d", owner, l.ActivitySpawnRange.Min, l.ActivitySpawnRange.Max)
		}
		for _, ref := range l.UnlockRequirements.SpecificActivities {
			if _, ok := c.activities[ref]; !ok {
				warn("%s: unlock requirement references unknown activity %q", owner, ref)
			}
		}
	}
	for _, w := range c.Workstations {
		for _, r := range w.Recipes {
			owner := fmt.Sprintf("workstation %s recipe %s", w.ID, r.ID)
			for _, cost := range r.Cost {
				if _, ok := c.items[cost.Item]; !ok {
					warn("%s: cost references unknown item %q", owner, cost.Item)
				}
			}
			if _, ok := c.items[r.Output.Item]; !ok {
				warn("%s: output references unknown item %q", owner, r.Output.Item)
			}
		}
	}
	for _, t := range c.Trophies {
		if u, ok := t.Requirement.(UnknownRequirement); ok {
			warn("trophy %s: unknown requirement type %q", t.ID, u.Type)
		}
	}
	return warnings
}
