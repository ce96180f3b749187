package httpadapter

import (
	"encoding/json"
	"testing"

	"shiplife/internal/app/drops"
	"shiplife/internal/app/loadouts"
	"shiplife/internal/app/status"
	"shiplife/internal/domain/drop"
	"shiplife/internal/domain/progression"
)

func TestResponseJSONUsesSnakeCase(t *testing.T) {
	state := progression.New(testCatalog())
	session := drop.Session{ID: "s1", LocationID: "wreck", LocationName: "Derelict Wreck", GuardianID: "stella", Phase: drop.PhaseAwaitingChoice}

	cases := []struct {
		name    string
		payload any
		want    []string
		notWant []string
	}{
		{
			name:    "status",
			payload: status.Response{State: state},
			want:    []string{"state", "statistics"},
			notWant: []string{"State", "Statistics"},
		},
		{
			name:    "drop step",
			payload: drops.StepResponse{Session: session, Step: drop.Step{Phase: drop.PhaseAwaitingChoice}},
			want:    []string{"session", "step"},
			notWant: []string{"Session", "Step"},
		},
		{
			name:    "loadout change",
			payload: loadouts.ChangeResponse{Loadout: loadouts.Summary{GuardianID: "stella"}, Previous: "rifle"},
			want:    []string{"loadout", "previous"},
			notWant: []string{"Loadout", "Previous"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(tc.payload)
			if err != nil {
				t.Fatalf("marshal failed: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("unmarshal failed: %v", err)
			}
			for _, key := range tc.want {
				if _, ok := got[key]; !ok {
					t.Fatalf("expected key %q in %s", key, string(b))
				}
			}
			for _, key := range tc.notWant {
				if _, ok := got[key]; ok {
					t.Fatalf("unexpected key %q in %s", key, string(b))
				}
			}
			switch tc.name {
			case "status":
				stateMap := asMap(got["state"])
				if _, ok := stateMap["workstation_levels"]; !ok {
					t.Fatalf("expected nested snake_case key state.workstation_levels in %s", string(b))
				}
			case "drop step":
				sessionMap := asMap(got["session"])
				if _, ok := sessionMap["location_id"]; !ok {
					t.Fatalf("expected nested snake_case key session.location_id in %s", string(b))
				}
				if _, ok := sessionMap["Activities"]; ok {
					t.Fatalf("activities must not leak into %s", string(b))
				}
			}
		})
	}
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}
