package trophy

import (
	"testing"

	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

func testEvaluator(trophies ...catalog.Trophy) Evaluator {
	return Evaluator{Catalog: catalog.New(catalog.Tables{
		Items: []catalog.Item{
			{ID: "void_crystal", Rarity: catalog.RarityRare},
			{ID: "battery", Rarity: catalog.RarityCommon},
		},
		Missions: []catalog.Mission{
			{ID: "m1", MissionType: "combat"},
			{ID: "m2", MissionType: "combat"},
			{ID: "m3", MissionType: "salvage"},
		},
		Guardians: []catalog.Guardian{{ID: "stella"}, {ID: "vawn"}},
		Trophies:  trophies,
	})}
}

func TestIsUnlocked_DispatchesEveryVariant(t *testing.T) {
	state := progression.State{
		CompletedMissions:      []string{"m1", "m2", "m3"},
		TotalMissionsRun:       3,
		Flags:                  map[string]bool{"squad_size_2": true},
		CraftedItems:           map[string]int{"rifle": 1, "shield": 2},
		CompletedConversations: []string{"c1"},
		Inventory:              map[string]int{"void_crystal": 1, "battery": 9},
		Loadouts: map[string]progression.Loadout{
			"stella": {Equipment: "a", Aspects: [3]string{"b", "c", "d"}},
			"vawn":   {Equipment: "a"},
		},
	}
	e := testEvaluator()
	cases := []struct {
		name string
		req  catalog.Requirement
		want bool
	}{
		{"missions completed met", catalog.MissionsCompleted{Count: 3}, true},
		{"missions completed unmet", catalog.MissionsCompleted{Count: 4}, false},
		{"perfect streak", catalog.PerfectStreak{Count: 3}, true},
		{"mission type", catalog.MissionTypeCount{MissionType: "combat", Count: 2}, true},
		{"mission type unmet", catalog.MissionTypeCount{MissionType: "salvage", Count: 2}, false},
		{"squad size", catalog.SquadSize{Size: 2}, true},
		{"squad size unmet", catalog.SquadSize{Size: 4}, false},
		{"solo difficult", catalog.SoloDifficult{}, false},
		{"full loadouts", catalog.FullLoadouts{Count: 1}, true},
		{"full loadouts unmet", catalog.FullLoadouts{Count: 2}, false},
		{"unique crafts", catalog.UniqueCrafts{Count: 2}, true},
		{"rare items", catalog.RareItems{Count: 1}, true},
		{"conversations", catalog.Conversations{Count: 2}, false},
		{"unknown", catalog.UnknownRequirement{Type: "dance_off"}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := e.IsUnlocked(catalog.Trophy{ID: "t", Requirement: tc.req}, state)
			if got != tc.want {
				t.Fatalf("unlocked mismatch: got=%v want=%v", got, tc.want)
			}
		})
	}
}

func TestPerfectStreak_BrokenByFailure(t *testing.T) {
	e := testEvaluator()
	state := progression.State{CompletedMissions: []string{"m1", "m2", "m3"}, TotalMissionsRun: 4}
	tr := catalog.Trophy{Requirement: catalog.PerfectStreak{Count: 3}}
	if e.IsUnlocked(tr, state) {
		t.Fatalf("expected streak broken when runs exceed completions")
	}
	if got := e.Progress(tr, state); got != 100 {
		t.Fatalf("expected progress capped at 100, got %d", got)
	}
}

func TestProgress_RoundsAndHandlesUnknown(t *testing.T) {
	e := testEvaluator()
	state := progression.State{CompletedMissions: []string{"m1"}}
	if got := e.Progress(catalog.Trophy{Requirement: catalog.MissionsCompleted{Count: 3}}, state); got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	if got := e.Progress(catalog.Trophy{Requirement: catalog.MissionsCompleted{Count: 0}}, state); got != 100 {
		t.Fatalf("expected zero-count requirement at 100, got %d", got)
	}
	if got := e.Progress(catalog.Trophy{Requirement: catalog.UnknownRequirement{Type: "x"}}, state); got != 0 {
		t.Fatalf("expected unknown requirement at 0, got %d", got)
	}
}

func TestCheckNew_NotifiesOnce(t *testing.T) {
	e := testEvaluator(
		catalog.Trophy{ID: "first", Name: "First Steps", Requirement: catalog.MissionsCompleted{Count: 1}},
		catalog.Trophy{ID: "veteran", Requirement: catalog.MissionsCompleted{Count: 10}},
	)
	state := progression.State{CompletedMissions: []string{"m1"}}

	fresh := e.CheckNew(&state)
	if len(fresh) != 1 || fresh[0].ID != "first" {
		t.Fatalf("expected first trophy, got %+v", fresh)
	}
	if !state.TrophyNotified("first") {
		t.Fatalf("expected first recorded as notified")
	}
	if again := e.CheckNew(&state); len(again) != 0 {
		t.Fatalf("expected no repeat notifications, got %+v", again)
	}
}

func TestWithStatus_ReportsEveryTrophy(t *testing.T) {
	e := testEvaluator(
		catalog.Trophy{ID: "first", Requirement: catalog.MissionsCompleted{Count: 2}},
		catalog.Trophy{ID: "solo", Requirement: catalog.SoloDifficult{}},
	)
	state := progression.State{CompletedMissions: []string{"m1"}, Flags: map[string]bool{FlagSoloDifficult: true}}
	got := e.WithStatus(state)
	if len(got) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(got))
	}
	if got[0].Unlocked || got[0].Progress != 50 {
		t.Fatalf("unexpected first status %+v", got[0])
	}
	if !got[1].Unlocked || got[1].Progress != 100 || got[1].Requirement != catalog.ReqSoloDifficult {
		t.Fatalf("unexpected solo status %+v", got[1])
	}
}
