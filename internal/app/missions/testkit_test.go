package missions

import (
	"context"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
	"shiplife/internal/domain/rules"
)

type stubStateStore struct {
	state   progression.State
	commits int
	err     error
}

var _ ports.StateStore = (*stubStateStore)(nil)

func (s *stubStateStore) View(context.Context) (progression.State, error) {
	if s.err != nil {
		return progression.State{}, s.err
	}
	return s.state.Clone(), nil
}

func (s *stubStateStore) Mutate(_ context.Context, fn func(*progression.State) error) error {
	if s.err != nil {
		return s.err
	}
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		return err
	}
	s.state = next
	s.commits++
	return nil
}

type stubMetrics struct {
	missions   map[string]int
	rejections []rules.Code
}

func (m *stubMetrics) RecordMission(missionType string, success bool) {
	if m.missions == nil {
		m.missions = map[string]int{}
	}
	if success {
		m.missions[missionType+":success"]++
		return
	}
	m.missions[missionType+":failure"]++
}

func (m *stubMetrics) RecordDrop(string) {}

func (m *stubMetrics) RecordRejection(code rules.Code) { m.rejections = append(m.rejections, code) }

type stubNotifier struct{ items []ports.Notification }

func (n *stubNotifier) Notify(v ports.Notification) { n.items = append(n.items, v) }

type constRNG float64

func (r constRNG) Float64() float64 { return float64(r) }

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.Tables{
		Items:     []catalog.Item{{ID: "metal_parts", Name: "Metal Parts", Type: catalog.ItemResource}},
		Guardians: []catalog.Guardian{{ID: "stella", Name: "Stella"}},
		Missions: []catalog.Mission{
			{
				ID: "patrol", Name: "Patrol", MissionType: "combat", Difficulty: 3, Repeatable: true,
				Rewards: catalog.Rewards{Success: []catalog.RewardSpec{{Item: "metal_parts", Min: 2, Max: 2, DropChance: 100}}},
			},
			{ID: "scan", Name: "Scan", MissionType: "scan", Difficulty: 1},
		},
		Trophies: []catalog.Trophy{{ID: "first", Name: "First Steps", Requirement: catalog.MissionsCompleted{Count: 1}}},
	})
}

func newUseCase() (UseCase, *stubStateStore, *stubMetrics, *stubNotifier) {
	cat := testCatalog()
	store := &stubStateStore{state: progression.New(cat)}
	metrics := &stubMetrics{}
	notifier := &stubNotifier{}
	return UseCase{Store: store, Catalog: cat, RNG: constRNG(0), Metrics: metrics, Notifier: notifier}, store, metrics, notifier
}
