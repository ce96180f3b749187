package drops

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"shiplife/internal/app/missions"
	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/drop"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rules"
)

type stubStateStore struct{ state progression.State }

var _ ports.StateStore = (*stubStateStore)(nil)

func (s *stubStateStore) View(context.Context) (progression.State, error) {
	return s.state.Clone(), nil
}

func (s *stubStateStore) Mutate(_ context.Context, fn func(*progression.State) error) error {
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	return nil
}

type stubFlusher struct{ flushes int }

func (f *stubFlusher) Flush(context.Context) error {
	f.flushes++
	return nil
}

type stubMetrics struct {
	drops      []string
	rejections []rules.Code
}

func (m *stubMetrics) RecordMission(string, bool)      {}
func (m *stubMetrics) RecordDrop(reason string)        { m.drops = append(m.drops, reason) }
func (m *stubMetrics) RecordRejection(code rules.Code) { m.rejections = append(m.rejections, code) }

type constRNG float64

func (r constRNG) Float64() float64 { return float64(r) }

type fixture struct {
	uc      UseCase
	store   *stubStateStore
	flusher *stubFlusher
	metrics *stubMetrics
}

func newFixture() fixture {
	cat := catalog.New(catalog.Tables{
		Items: []catalog.Item{
			{ID: "scrap", Name: "Scrap", Type: catalog.ItemResource},
			{ID: "medal", Name: "Medal", Type: catalog.ItemResource},
		},
		Guardians: []catalog.Guardian{{ID: "stella", Name: "Stella"}},
		Activities: []catalog.Activity{{
			ID: "crawler", Name: "Hull Crawler", Type: "combat", Rarity: catalog.RarityCommon, DownRisk: 100,
			LootTable: []catalog.RewardSpec{{Item: "scrap", Min: 3, Max: 3, DropChance: 100}},
		}},
		Missions: []catalog.Mission{{
			ID: "patrol", Name: "Patrol", MissionType: "combat", Difficulty: 1, Repeatable: true,
			Rewards: catalog.Rewards{Success: []catalog.RewardSpec{{Item: "medal", Min: 5, Max: 5, DropChance: 100}}},
		}},
		Locations: []catalog.Location{{
			ID: "wreck", Name: "Derelict Wreck",
			ActivitySpawnRange:       catalog.SpawnRange{Min: 1, Max: 1},
			ActivityTypeDistribution: catalog.Distribution{{Type: "combat", Percent: 100}},
			MaxActivities:            1,
		}},
	})
	n := 0
	reg := NewRegistry()
	reg.NewID = func() string {
		n++
		return "drop-" + strconv.Itoa(n)
	}
	f := fixture{
		store:   &stubStateStore{state: progression.New(cat)},
		flusher: &stubFlusher{},
		metrics: &stubMetrics{},
	}
	f.uc = UseCase{Store: f.store, Flusher: f.flusher, Catalog: cat, RNG: constRNG(0), Sessions: reg, Metrics: f.metrics}
	return f
}

func TestDrop_FullRunExtractsAndFlushes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	started, err := f.uc.Start(ctx, StartRequest{LocationID: "wreck", GuardianID: "stella"})
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Session.ID != "drop-1" || started.Step.Phase != drop.PhaseAwaitingChoice {
		t.Fatalf("unexpected start %+v", started)
	}

	step, err := f.uc.Choose(ctx, ChoiceRequest{SessionID: "drop-1", Choice: "engage"})
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if step.Step.Reason != drop.ReasonMaxActivities {
		t.Fatalf("expected max activities extraction, got %q", step.Step.Reason)
	}

	out, err := f.uc.Extract(ctx, ExtractRequest{SessionID: "drop-1"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(out.Results.Recovered) != 1 || out.Results.Recovered[0].Quantity != 3 {
		t.Fatalf("unexpected recovered %+v", out.Results.Recovered)
	}
	if f.flusher.flushes != 1 {
		t.Fatalf("extraction must flush the save, flushes=%d", f.flusher.flushes)
	}
	if len(f.metrics.drops) != 1 || f.metrics.drops[0] != drop.ReasonMaxActivities {
		t.Fatalf("unexpected drop metrics %v", f.metrics.drops)
	}
	if f.store.state.Progression.SuccessfulDrops != 1 || f.store.state.Count("scrap") != 3 {
		t.Fatalf("drop not folded into state: %+v", f.store.state.Progression)
	}

	_, err = f.uc.Extract(ctx, ExtractRequest{SessionID: "drop-1"})
	if r, ok := rules.AsRejection(err); !ok || r.Code != rules.CodeDropFinished {
		t.Fatalf("expected DROP_FINISHED, got %v", err)
	}
}

func TestStart_OneUnfinishedDropAtATime(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.uc.Start(ctx, StartRequest{LocationID: "wreck", GuardianID: "stella"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	_, err := f.uc.Start(ctx, StartRequest{LocationID: "wreck", GuardianID: "stella"})
	if r, ok := rules.AsRejection(err); !ok || r.Code != rules.CodeDropInProgress {
		t.Fatalf("expected DROP_IN_PROGRESS, got %v", err)
	}
	if len(f.metrics.rejections) != 1 {
		t.Fatalf("expected rejection metric")
	}
}

func TestChoose_UnknownSession(t *testing.T) {
	f := newFixture()
	if _, err := f.uc.Choose(context.Background(), ChoiceRequest{SessionID: "nope", Choice: "engage"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.uc.Choose(context.Background(), ChoiceRequest{SessionID: "nope"}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestLocations_ReportsUnlockStatus(t *testing.T) {
	f := newFixture()
	resp, err := f.uc.Locations(context.Background())
	if err != nil {
		t.Fatalf("locations: %v", err)
	}
	if len(resp.Locations) != 1 || !resp.Locations[0].Unlocked {
		t.Fatalf("unexpected locations %+v", resp.Locations)
	}
}

func (f fixture) launchPatrol(t *testing.T) {
	t.Helper()
	mc := missions.UseCase{Store: f.store, Catalog: f.uc.Catalog, RNG: constRNG(0)}
	out, err := mc.Launch(context.Background(), missions.LaunchRequest{MissionID: "patrol", Squad: []string{"stella"}})
	if err != nil || !out.Outcome.Success {
		t.Fatalf("launch patrol: success=%v err=%v", out.Outcome.Success, err)
	}
}

func TestDowned_KeepsMissionRewardsEarnedMidDrop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.uc.Start(ctx, StartRequest{LocationID: "wreck", GuardianID: "stella"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.launchPatrol(t)

	f.uc.RNG = constRNG(0.99)
	step, err := f.uc.Choose(ctx, ChoiceRequest{SessionID: "drop-1", Choice: "engage"})
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	if step.Step.Reason != drop.ReasonDowned {
		t.Fatalf("expected downed extraction, got %q", step.Step.Reason)
	}
	out, err := f.uc.Extract(ctx, ExtractRequest{SessionID: "drop-1"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(out.Results.Recovered) != 0 {
		t.Fatalf("downed drop must recover nothing, got %+v", out.Results.Recovered)
	}
	if got, want := f.store.state.Count("medal"), 5; got != want {
		t.Fatalf("mission reward lost to drop revert: got=%d want=%d", got, want)
	}
}

func TestExtract_RecoversOnlyDropLoot(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.uc.Start(ctx, StartRequest{LocationID: "wreck", GuardianID: "stella"}); err != nil {
		t.Fatalf("start: %v", err)
	}
	f.launchPatrol(t)

	if _, err := f.uc.Choose(ctx, ChoiceRequest{SessionID: "drop-1", Choice: "engage"}); err != nil {
		t.Fatalf("choose: %v", err)
	}
	out, err := f.uc.Extract(ctx, ExtractRequest{SessionID: "drop-1"})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	rec := out.Results.Recovered
	if len(rec) != 1 || rec[0].Item != "scrap" || rec[0].Quantity != 3 {
		t.Fatalf("recovered must list drop loot only, got %+v", rec)
	}
	if got, want := f.store.state.Count("medal"), 5; got != want {
		t.Fatalf("medal mismatch: got=%d want=%d", got, want)
	}
}
