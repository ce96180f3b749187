package savegame

import (
	"context"
	"sync"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
)

type stubStore struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	puts   int
	log    [][]byte
	putErr error
	getErr error
}

var _ ports.SnapshotStore = (*stubStore)(nil)

func newStubStore() *stubStore { return &stubStore{blobs: map[string][]byte{}} }

func (s *stubStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	b, ok := s.blobs[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]byte(nil), b...), nil
}

func (s *stubStore) Put(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.blobs[key] = append([]byte(nil), blob...)
	s.log = append(s.log, s.blobs[key])
	return nil
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *stubStore) putCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.puts
}

func (s *stubStore) written() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([][]byte(nil), s.log...)
}

type stubFeed struct {
	mu    sync.Mutex
	items []ports.Notification
}

func (f *stubFeed) Notify(n ports.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
}

func (f *stubFeed) kinds() []ports.NotificationKind {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]ports.NotificationKind, 0, len(f.items))
	for _, n := range f.items {
		out = append(out, n.Kind)
	}
	return out
}

func testCatalog() *catalog.Catalog {
	return catalog.New(catalog.Tables{
		Items: []catalog.Item{
			{ID: "metal_parts", Name: "Metal Parts", Type: catalog.ItemResource},
			{ID: "bp_basic", Name: "Basic Schematic", Type: catalog.ItemBlueprint, UnlockedAtStart: true},
		},
		Guardians:    []catalog.Guardian{{ID: "stella", Name: "Stella"}},
		Workstations: []catalog.Workstation{{ID: "forge", Name: "Forge", MaxLevel: 3}},
	})
}

func newService(store *stubStore, feed *stubFeed) *Service {
	return &Service{Store: store, Catalog: testCatalog(), Notifier: feed}
}
