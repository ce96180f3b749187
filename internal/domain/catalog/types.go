package catalog

import (
	"encoding/json"
	"fmt"
)

type ItemType string

const (
	ItemResource  ItemType = "resource"
	ItemEquipment ItemType = "equipment"
	ItemAspect    ItemType = "aspect"
	ItemBlueprint ItemType = "blueprint"
)

type Rarity string

const (
	RarityCommon   Rarity = "common"
	RarityUncommon Rarity = "uncommon"
	RarityRare     Rarity = "rare"
)

type Item struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Type            ItemType       `json:"type"`
	Subtype         string         `json:"subtype,omitempty"`
	EquipmentType   string         `json:"equipment_type,omitempty"`
	Rarity          Rarity         `json:"rarity,omitempty"`
	MissionBonuses  map[string]int `json:"mission_bonuses,omitempty"`
	UnlockedAtStart bool           `json:"unlocked_at_start,omitempty"`
}

type ItemAmount struct {
	Item   string `json:"item"`
	Amount int    `json:"amount"`
}

// RewardSpec is one row of a reward or loot table. Activity loot tables name
// the item "resource_id"; both spellings decode into Item.
type RewardSpec struct {
	Item       string  `json:"item"`
	Min        int     `json:"min"`
	Max        int     `json:"max"`
	DropChance float64 `json:"drop_chance"`
}

func (r *RewardSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Item       string  `json:"item"`
		ResourceID string  `json:"resource_id"`
		Min        int     `json:"min"`
		Max        int     `json:"max"`
		DropChance float64 `json:"drop_chance"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Item = raw.Item
	if r.Item == "" {
		r.Item = raw.ResourceID
	}
	r.Min = raw.Min
	r.Max = raw.Max
	r.DropChance = raw.DropChance
	return nil
}

type Prerequisites struct {
	MissionsCompleted []string `json:"missions_completed,omitempty"`
	TotalMissions     int      `json:"total_missions,omitempty"`
	Flags             []string `json:"flags,omitempty"`
}

type MissionRequirements struct {
	EquipmentSubtype string `json:"equipment_subtype,omitempty"`
}

type Rewards struct {
	Success []RewardSpec `json:"success"`
	Failure []RewardSpec `json:"failure"`
}

type UnlockOnComplete struct {
	Flags []string `json:"flags,omitempty"`
}

type SimulationMessage struct {
	Text        string  `json:"text"`
	BarProgress float64 `json:"bar_progress"`
	DisplayTime float64 `json:"display_time"`
}

type Simulation struct {
	Messages []SimulationMessage `json:"messages"`
}

type Mission struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Description      string              `json:"description,omitempty"`
	MissionType      string              `json:"mission_type"`
	Difficulty       int                 `json:"difficulty"`
	Prerequisites    Prerequisites       `json:"prerequisites"`
	Requirements     MissionRequirements `json:"requirements"`
	Repeatable       bool                `json:"repeatable"`
	PersistOnFail    bool                `json:"persist_on_fail,omitempty"`
	Rewards          Rewards             `json:"rewards"`
	UnlockOnComplete UnlockOnComplete    `json:"unlock_on_complete"`
	Simulation       Simulation          `json:"simulation"`
	Anomaly          *Anomaly            `json:"anomaly,omitempty"`
}

func (m Mission) EncounterType() string       { return m.MissionType }
func (m Mission) EncounterDifficulty() int    { return m.Difficulty }
func (m Mission) EncounterAnomaly() *Anomaly  { return m.Anomaly }
func (a Activity) EncounterType() string      { return a.Type }
func (a Activity) EncounterDifficulty() int   { return a.Difficulty }
func (a Activity) EncounterAnomaly() *Anomaly { return a.Anomaly }

type AnomalyEffects struct {
	DifficultyModifier       int          `json:"difficulty_modifier,omitempty"`
	RewardMultiplier         float64      `json:"reward_multiplier,omitempty"`
	RequiresMinimumGuardians int          `json:"requires_minimum_guardians,omitempty"`
	RequiresSpecificGuardian string       `json:"requires_specific_guardian,omitempty"`
	RequiresEquipmentType    string       `json:"requires_equipment_type,omitempty"`
	RewardBonusItems         []ItemAmount `json:"reward_bonus_items,omitempty"`
	RelationshipBonus        int          `json:"relationship_bonus,omitempty"`
	UnlockFlag               string       `json:"unlock_flag,omitempty"`
}

type Anomaly struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category,omitempty"`
	Rarity      Rarity         `json:"rarity"`
	Effects     AnomalyEffects `json:"effects"`
}

// Multiplier returns the reward multiplier of an anomaly, 1 when absent.
func (a *Anomaly) Multiplier() float64 {
	if a == nil || a.Effects.RewardMultiplier <= 0 {
		return 1
	}
	return a.Effects.RewardMultiplier
}

type Moment string

const (
	MomentInitiate Moment = "initiate"
	MomentEngage   Moment = "engage"
	MomentSuccess  Moment = "success"
	MomentFail     Moment = "fail"
	MomentDowned   Moment = "downed"
)

// DefaultSpeaker keys the narration lines used when a guardian has none.
const DefaultSpeaker = "default"

type Activity struct {
	ID            string                       `json:"id"`
	Name          string                       `json:"name"`
	Description   string                       `json:"description,omitempty"`
	Type          string                       `json:"type"`
	Rarity        Rarity                       `json:"rarity"`
	Difficulty    int                          `json:"difficulty,omitempty"`
	LootTable     []RewardSpec                 `json:"loot_table"`
	DetectionRisk float64                      `json:"detection_risk"`
	FleeChance    float64                      `json:"flee_chance"`
	DownRisk      float64                      `json:"down_risk"`
	Dialogue      map[string]map[Moment]string `json:"dialogue,omitempty"`
	Anomaly       *Anomaly                     `json:"anomaly,omitempty"`
}

type SpawnRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

type UnlockRequirements struct {
	DropCount           int      `json:"drop_count,omitempty"`
	ActivitiesCompleted int      `json:"activities_completed,omitempty"`
	SpecificActivities  []string `json:"specific_activities,omitempty"`
}

type Location struct {
	ID                       string             `json:"id"`
	Name                     string             `json:"name"`
	Description              string             `json:"description,omitempty"`
	ActivitySpawnRange       SpawnRange         `json:"activity_spawn_range"`
	ActivityTypeDistribution Distribution       `json:"activity_type_distribution"`
	MaxActivities            int                `json:"max_activities"`
	Locked                   bool               `json:"locked,omitempty"`
	UnlockRequirements       UnlockRequirements `json:"unlock_requirements"`
}

type Guardian struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
}

type UpgradeCost struct {
	Level     int          `json:"level"`
	Resources []ItemAmount `json:"resources"`
}

type Recipe struct {
	ID                string       `json:"id"`
	Name              string       `json:"name"`
	Description       string       `json:"description,omitempty"`
	RequiredLevel     int          `json:"required_level"`
	BlueprintRequired string       `json:"blueprint_required,omitempty"`
	Cost              []ItemAmount `json:"cost"`
	Output            ItemAmount   `json:"output"`
}

type Workstation struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	MaxLevel     int            `json:"max_level"`
	LevelNames   map[int]string `json:"level_names,omitempty"`
	UpgradeCosts []UpgradeCost  `json:"upgrade_costs,omitempty"`
	Recipes      []Recipe       `json:"recipes,omitempty"`
}

// LevelName returns the display name of a level, "Level N" when unnamed.
func (w Workstation) LevelName(level int) string {
	if name, ok := w.LevelNames[level]; ok && name != "" {
		return name
	}
	return fmt.Sprintf("Level %d", level)
}

func (w Workstation) UpgradeCostFor(level int) (UpgradeCost, bool) {
	for _, c := range w.UpgradeCosts {
		if c.Level == level {
			return c, true
		}
	}
	return UpgradeCost{}, false
}

func (w Workstation) Recipe(id string) (Recipe, bool) {
	for _, r := range w.Recipes {
		if r.ID == id {
			return r, true
		}
	}
	return Recipe{}, false
}

type Trophy struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Requirement Requirement `json:"-"`
}
