package savegame

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"shiplife/internal/domain/progression"
)

const v1Save = `{
  "version": "1.0",
  "inventory": {"metal_parts": 7},
  "flags": {"intro_done": true},
  "workstations": {"forge": {"level": 2}},
  "progression": {
    "total_drops": 3,
    "successful_drops": 2,
    "failed_drops": 1,
    "activities_completed": {"_total": 4, "crawler": 4}
  },
  "current_missions": [
    {"id": "patrol", "name": "Patrol", "anomaly": {"id": "bounty", "name": "Bounty"}},
    {"id": "salvage", "name": "Salvage", "anomaly": null}
  ]
}`

func TestDecode_MigratesSchemaOne(t *testing.T) {
	s, warnings, err := Decode([]byte(v1Save), testCatalog())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings %v", warnings)
	}
	if s.Version != progression.SchemaVersion {
		t.Fatalf("version mismatch: got=%d want=%d", s.Version, progression.SchemaVersion)
	}
	if got, want := s.WorkstationLevels["forge"], 2; got != want {
		t.Fatalf("forge level mismatch: got=%d want=%d", got, want)
	}
	if got, want := s.Progression.ActivitiesTotal, 4; got != want {
		t.Fatalf("activities total mismatch: got=%d want=%d", got, want)
	}
	if _, ok := s.Progression.ActivitiesCompleted["_total"]; ok {
		t.Fatalf("legacy total key must be removed")
	}
	if s.Progression.ActivitiesCompleted["crawler"] != 4 || s.Progression.SuccessfulDrops != 2 {
		t.Fatalf("unexpected progression %+v", s.Progression)
	}
	want := []progression.MissionOffer{{MissionID: "patrol", AnomalyID: "bounty"}, {MissionID: "salvage"}}
	if len(s.CurrentMissions) != 2 || s.CurrentMissions[0] != want[0] || s.CurrentMissions[1] != want[1] {
		t.Fatalf("unexpected board %+v", s.CurrentMissions)
	}
	if !s.HasFlag("intro_done") || s.Count("metal_parts") != 7 {
		t.Fatalf("plain fields must survive migration")
	}
	if _, ok := s.Loadouts["stella"]; !ok || !s.BlueprintLearned("bp_basic") {
		t.Fatalf("missing sub-structures must be synthesized")
	}
}

func TestDecode_RejectsNewerAndCorrupt(t *testing.T) {
	if _, _, err := Decode([]byte(`{"version": 3}`), testCatalog()); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
	for _, blob := range []string{`{"version": 2`, `null`, `[1,2]`} {
		if _, _, err := Decode([]byte(blob), testCatalog()); !errors.Is(err, ErrCorrupt) {
			t.Fatalf("expected corrupt for %s, got %v", blob, err)
		}
	}
}

func TestDecode_ResetsOnlyTheBrokenField(t *testing.T) {
	blob := `{"version": 2, "inventory": "lots", "flags": {"a": true}, "total_missions_run": 9}`
	s, warnings, err := Decode([]byte(blob), testCatalog())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(warnings) != 1 || !strings.HasPrefix(warnings[0], "inventory") {
		t.Fatalf("expected one inventory warning, got %v", warnings)
	}
	if s.Inventory == nil || len(s.Inventory) != 0 {
		t.Fatalf("broken inventory must reset to empty, got %v", s.Inventory)
	}
	if !s.HasFlag("a") || s.TotalMissionsRun != 9 {
		t.Fatalf("healthy fields must be kept")
	}
}

func TestEncode_RoundTripIsStable(t *testing.T) {
	cat := testCatalog()
	s := progression.New(cat)
	s.AddItem("metal_parts", 3)
	s.SetFlag("intro_done")
	s.CurrentMissions = []progression.MissionOffer{{MissionID: "patrol", AnomalyID: "bounty"}}
	l := s.Loadouts["stella"]
	l.Aspects[1] = "focus"
	s.Loadouts["stella"] = l

	first, err := Encode(s, cat)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, _, err := Decode(first, cat)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second, err := Encode(decoded, cat)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("round trip changed the snapshot:\n%s\n---\n%s", first, second)
	}
	if !bytes.Contains(first, []byte(`"equipment": null`)) {
		t.Fatalf("empty slots must be written as null")
	}
	if !bytes.Contains(first, []byte(`"version": 2`)) {
		t.Fatalf("expected integer schema version in %s", first)
	}
}
