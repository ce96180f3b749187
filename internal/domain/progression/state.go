package progression

import (
	"maps"
	"slices"
	"sort"
	"strings"

	"shiplife/internal/domain/catalog"
)

// SchemaVersion is the snapshot schema this build writes.
const SchemaVersion = 2

// CounterTotal keys the all-guardian entry of MissionCounters.
const CounterTotal = "total"

type Relationships struct {
	MissionsTogether       map[string]int `json:"missions_together"`
	ConversationsCompleted map[string]int `json:"conversations_completed"`
}

type Progression struct {
	TotalDrops          int            `json:"total_drops"`
	SuccessfulDrops     int            `json:"successful_drops"`
	FailedDrops         int            `json:"failed_drops"`
	ActivitiesCompleted map[string]int `json:"activities_completed"`
	ActivitiesTotal     int            `json:"activities_total"`
}

// MissionOffer is one card on the persisted mission board.
type MissionOffer struct {
	MissionID string `json:"mission_id"`
	AnomalyID string `json:"anomaly_id,omitempty"`
}

// State is the single persisted aggregate. Every mutation goes through the
// methods below so the inventory and set invariants hold.
type State struct {
	Version                int                `json:"version"`
	ActiveGuardian         string             `json:"active_guardian,omitempty"`
	Inventory              map[string]int     `json:"inventory"`
	Loadouts               map[string]Loadout `json:"loadouts"`
	Flags                  map[string]bool    `json:"flags"`
	MissionCounters        map[string]int     `json:"mission_counters"`
	TotalMissionsRun       int                `json:"total_missions_run"`
	Relationships          Relationships      `json:"relationships"`
	CompletedMissions      []string           `json:"completed_missions"`
	CompletedConversations []string           `json:"completed_conversations"`
	WorkstationLevels      map[string]int     `json:"workstation_levels"`
	LearnedBlueprints      []string           `json:"learned_blueprints"`
	CraftedItems           map[string]int     `json:"crafted_items"`
	Progression            Progression        `json:"progression"`
	CurrentMissions        []MissionOffer     `json:"current_missions"`
	NotifiedTrophies       []string           `json:"notified_trophies"`
}

var defaultInventory = map[string]int{
	"plasma_cell":  20,
	"metal_parts":  15,
	"common_alloy": 10,
	"battery":      5,
}

// New returns a fresh save seeded from the catalog: empty loadouts for every
// guardian, level 1 for every workstation and the starting blueprints.
func New(cat *catalog.Catalog) State {
	s := State{Version: SchemaVersion, Inventory: maps.Clone(defaultInventory)}
	if cat != nil {
		s.LearnedBlueprints = cat.StartingBlueprints()
	}
	s.Normalize(cat)
	return s
}

// Normalize synthesizes every missing sub-structure in place. It never
// overwrites data that is present.
func (s *State) Normalize(cat *catalog.Catalog) {
	if s.Version == 0 {
		s.Version = SchemaVersion
	}
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	for k, v := range s.Inventory {
		if v <= 0 {
			delete(s.Inventory, k)
		}
	}
	if s.Loadouts == nil {
		s.Loadouts = map[string]Loadout{}
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	if s.MissionCounters == nil {
		s.MissionCounters = map[string]int{}
	}
	if _, ok := s.MissionCounters[CounterTotal]; !ok {
		s.MissionCounters[CounterTotal] = 0
	}
	if s.Relationships.MissionsTogether == nil {
		s.Relationships.MissionsTogether = map[string]int{}
	}
	if s.Relationships.ConversationsCompleted == nil {
		s.Relationships.ConversationsCompleted = map[string]int{}
	}
	if s.CompletedMissions == nil {
		s.CompletedMissions = []string{}
	}
	if s.CompletedConversations == nil {
		s.CompletedConversations = []string{}
	}
	if s.WorkstationLevels == nil {
		s.WorkstationLevels = map[string]int{}
	}
	if s.LearnedBlueprints == nil {
		s.LearnedBlueprints = []string{}
	}
	if s.CraftedItems == nil {
		s.CraftedItems = map[string]int{}
	}
	if s.Progression.ActivitiesCompleted == nil {
		s.Progression.ActivitiesCompleted = map[string]int{}
	}
	if s.CurrentMissions == nil {
		s.CurrentMissions = []MissionOffer{}
	}
	if s.NotifiedTrophies == nil {
		s.NotifiedTrophies = []string{}
	}
	if cat == nil {
		return
	}
	for _, id := range cat.GuardianIDs() {
		if _, ok := s.Loadouts[id]; !ok {
			s.Loadouts[id] = Loadout{}
		}
	}
	for _, ws := range cat.Workstations {
		if s.WorkstationLevels[ws.ID] < 1 {
			s.WorkstationLevels[ws.ID] = 1
		}
	}
}

// Clone returns a deep copy that shares no maps or slices with s.
func (s State) Clone() State {
	out := s
	out.Inventory = maps.Clone(s.Inventory)
	out.Loadouts = maps.Clone(s.Loadouts)
	out.Flags = maps.Clone(s.Flags)
	out.MissionCounters = maps.Clone(s.MissionCounters)
	out.Relationships.MissionsTogether = maps.Clone(s.Relationships.MissionsTogether)
	out.Relationships.ConversationsCompleted = maps.Clone(s.Relationships.ConversationsCompleted)
	out.CompletedMissions = slices.Clone(s.CompletedMissions)
	out.CompletedConversations = slices.Clone(s.CompletedConversations)
	out.WorkstationLevels = maps.Clone(s.WorkstationLevels)
	out.LearnedBlueprints = slices.Clone(s.LearnedBlueprints)
	out.CraftedItems = maps.Clone(s.CraftedItems)
	out.Progression.ActivitiesCompleted = maps.Clone(s.Progression.ActivitiesCompleted)
	out.CurrentMissions = slices.Clone(s.CurrentMissions)
	out.NotifiedTrophies = slices.Clone(s.NotifiedTrophies)
	return out
}

func (s *State) SetFlag(name string) {
	if name == "" {
		return
	}
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	s.Flags[name] = true
}

func (s State) HasFlag(name string) bool {
	return s.Flags[name]
}

func (s State) MissionCompleted(id string) bool {
	return slices.Contains(s.CompletedMissions, id)
}

// MarkMissionCompleted records a completion once.
func (s *State) MarkMissionCompleted(id string) bool {
	return addToSet(&s.CompletedMissions, id)
}

func (s *State) MarkConversationCompleted(id string) bool {
	return addToSet(&s.CompletedConversations, id)
}

func (s State) BlueprintLearned(id string) bool {
	return slices.Contains(s.LearnedBlueprints, id)
}

func (s *State) LearnBlueprint(id string) bool {
	return addToSet(&s.LearnedBlueprints, id)
}

func (s State) TrophyNotified(id string) bool {
	return slices.Contains(s.NotifiedTrophies, id)
}

func (s *State) MarkTrophyNotified(id string) bool {
	return addToSet(&s.NotifiedTrophies, id)
}

// IncrementMissionCounter bumps the total and, when given, one guardian.
func (s *State) IncrementMissionCounter(guardianID string) {
	if s.MissionCounters == nil {
		s.MissionCounters = map[string]int{}
	}
	s.MissionCounters[CounterTotal]++
	if guardianID != "" {
		s.MissionCounters[guardianID]++
	}
}

// PairKey is the order-independent key of two guardians.
func PairKey(a, b string) string {
	pair := []string{a, b}
	sort.Strings(pair)
	return strings.Join(pair, "_")
}

// AddMissionsTogether adds amount to every unordered pair in squad.
func (s *State) AddMissionsTogether(squad []string, amount int) {
	if s.Relationships.MissionsTogether == nil {
		s.Relationships.MissionsTogether = map[string]int{}
	}
	for i := 0; i < len(squad); i++ {
		for j := i + 1; j < len(squad); j++ {
			s.Relationships.MissionsTogether[PairKey(squad[i], squad[j])] += amount
		}
	}
}

func (s *State) RecordCraft(itemID string, amount int) {
	if itemID == "" || amount <= 0 {
		return
	}
	if s.CraftedItems == nil {
		s.CraftedItems = map[string]int{}
	}
	s.CraftedItems[itemID] += amount
}

// RecordActivityCompleted counts one successfully engaged activity.
func (s *State) RecordActivityCompleted(activityID string) {
	if s.Progression.ActivitiesCompleted == nil {
		s.Progression.ActivitiesCompleted = map[string]int{}
	}
	s.Progression.ActivitiesCompleted[activityID]++
	s.Progression.ActivitiesTotal++
}

// RecordDrop folds an extracted drop into the progression counters.
func (s *State) RecordDrop(downed bool) {
	s.Progression.TotalDrops++
	if downed {
		s.Progression.FailedDrops++
		return
	}
	s.Progression.SuccessfulDrops++
}

func (s State) WorkstationLevel(id string) int {
	if lvl := s.WorkstationLevels[id]; lvl > 0 {
		return lvl
	}
	return 1
}

func addToSet(set *[]string, id string) bool {
	if id == "" || slices.Contains(*set, id) {
		return false
	}
	*set = append(*set, id)
	return true
}
