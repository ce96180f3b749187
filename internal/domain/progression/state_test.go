package progression

import (
	"encoding/json"
	"math/rand/v2"
	"strings"
	"testing"

	"shiplife/internal/domain/catalog"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.Tables{
		Items: []catalog.Item{
			{ID: "blueprint_basic_rifle", Type: catalog.ItemBlueprint, UnlockedAtStart: true},
			{ID: "blueprint_plasma_lance", Type: catalog.ItemBlueprint},
		},
		Guardians:    []catalog.Guardian{{ID: "stella"}, {ID: "vawn"}},
		Workstations: []catalog.Workstation{{ID: "fabricator", MaxLevel: 3}},
	})
}

func TestNew_SeedsFromCatalog(t *testing.T) {
	s := New(testCatalog())

	if s.Version != SchemaVersion {
		t.Fatalf("version mismatch: got=%d want=%d", s.Version, SchemaVersion)
	}
	if got, want := s.Count("plasma_cell"), 20; got != want {
		t.Fatalf("plasma_cell mismatch: got=%d want=%d", got, want)
	}
	if _, ok := s.Loadouts["vawn"]; !ok {
		t.Fatalf("expected vawn loadout")
	}
	if got := s.WorkstationLevels["fabricator"]; got != 1 {
		t.Fatalf("expected fabricator level 1, got %d", got)
	}
	if !s.BlueprintLearned("blueprint_basic_rifle") || s.BlueprintLearned("blueprint_plasma_lance") {
		t.Fatalf("unexpected starting blueprints %v", s.LearnedBlueprints)
	}
	if s.MissionCounters[CounterTotal] != 0 {
		t.Fatalf("expected zero total counter")
	}
}

func TestInventory_NeverNegativeAndZeroRemovesKey(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	s := State{}
	items := []string{"a", "b", "c"}
	for i := 0; i < 2000; i++ {
		item := items[r.IntN(len(items))]
		qty := r.IntN(5)
		switch r.IntN(3) {
		case 0:
			s.AddItem(item, qty)
		case 1:
			s.ConsumeItem(item, qty)
		default:
			s.RemoveUpTo(item, qty)
		}
		for k, v := range s.Inventory {
			if v <= 0 {
				t.Fatalf("step %d: inventory[%s]=%d must be removed or positive", i, k, v)
			}
		}
	}
}

func TestConsumeItem_RejectsShortfallWithoutMutation(t *testing.T) {
	s := State{Inventory: map[string]int{"battery": 2}}
	if s.ConsumeItem("battery", 3) {
		t.Fatalf("expected shortfall rejection")
	}
	if got := s.Count("battery"); got != 2 {
		t.Fatalf("battery mismatch: got=%d want=2", got)
	}
	if !s.ConsumeItem("battery", 2) {
		t.Fatalf("expected exact consume")
	}
	if _, ok := s.Inventory["battery"]; ok {
		t.Fatalf("expected battery key removed")
	}
}

func TestConsumeAll_IsAllOrNothing(t *testing.T) {
	s := State{Inventory: map[string]int{"metal_parts": 5, "battery": 1}}
	costs := []ItemQuantity{{Item: "metal_parts", Quantity: 3}, {Item: "battery", Quantity: 2}}
	if s.ConsumeAll(costs) {
		t.Fatalf("expected rejection")
	}
	if s.Count("metal_parts") != 5 || s.Count("battery") != 1 {
		t.Fatalf("inventory mutated on rejection: %v", s.Inventory)
	}
}

func TestClone_SharesNothing(t *testing.T) {
	s := New(testCatalog())
	c := s.Clone()
	c.AddItem("plasma_cell", 1)
	c.SetFlag("x")
	c.MarkMissionCompleted("m1")
	lo := c.Loadouts["stella"]
	lo.Equipment = "rifle"
	c.Loadouts["stella"] = lo
	c.RecordActivityCompleted("crate")

	if s.Count("plasma_cell") != 20 || s.HasFlag("x") || s.MissionCompleted("m1") {
		t.Fatalf("clone leaked into original")
	}
	if s.Loadouts["stella"].Equipment != "" {
		t.Fatalf("loadout leaked into original")
	}
	if s.Progression.ActivitiesTotal != 0 || len(s.Progression.ActivitiesCompleted) != 0 {
		t.Fatalf("progression leaked into original")
	}
}

func TestMarkMissionCompleted_Idempotent(t *testing.T) {
	s := State{}
	if !s.MarkMissionCompleted("m1") {
		t.Fatalf("expected first mark to report added")
	}
	if s.MarkMissionCompleted("m1") {
		t.Fatalf("expected second mark to be a no-op")
	}
	if len(s.CompletedMissions) != 1 {
		t.Fatalf("expected one entry, got %v", s.CompletedMissions)
	}
}

func TestAddMissionsTogether_CountsEveryPair(t *testing.T) {
	s := State{}
	s.AddMissionsTogether([]string{"vawn", "stella", "maestra"}, 1)
	for _, key := range []string{"stella_vawn", "maestra_vawn", "maestra_stella"} {
		if s.Relationships.MissionsTogether[key] != 1 {
			t.Fatalf("expected pair %s counted once, got %v", key, s.Relationships.MissionsTogether)
		}
	}
	if len(s.Relationships.MissionsTogether) != 3 {
		t.Fatalf("expected 3 pairs, got %d", len(s.Relationships.MissionsTogether))
	}
}

func TestLoadout_JSONUsesNullForEmptySlots(t *testing.T) {
	l := Loadout{Equipment: "rifle", Aspects: [AspectSlots]string{"", "focus", ""}}
	raw, err := json.Marshal(l)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"equipment":"rifle","aspects":[null,"focus",null]}` {
		t.Fatalf("unexpected encoding %s", raw)
	}

	var decoded Loadout
	if err := json.Unmarshal([]byte(`{"equipment":null,"aspects":["a"]}`), &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Equipment != "" || decoded.Aspects != [AspectSlots]string{"a", "", ""} {
		t.Fatalf("unexpected decode %+v", decoded)
	}
}

func TestRecordDrop_SplitsByOutcome(t *testing.T) {
	s := State{}
	s.RecordDrop(false)
	s.RecordDrop(true)
	s.RecordDrop(false)
	p := s.Progression
	if p.TotalDrops != 3 || p.SuccessfulDrops != 2 || p.FailedDrops != 1 {
		t.Fatalf("unexpected drop counters %+v", p)
	}
}

func TestPairKey_OrderIndependent(t *testing.T) {
	if PairKey("vawn", "stella") != PairKey("stella", "vawn") {
		t.Fatalf("pair key must not depend on order")
	}
	if !strings.Contains(PairKey("b", "a"), "a_b") {
		t.Fatalf("expected sorted key, got %s", PairKey("b", "a"))
	}
}
