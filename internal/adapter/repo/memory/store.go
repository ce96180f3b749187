package memory

import (
	"context"
	"sync"

	"shiplife/internal/app/ports"
)

// Store keeps snapshots in process memory. It is the default for tests and
// throwaway sessions.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ ports.SnapshotStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Seed stores a blob directly, bypassing the context.
func (s *Store) Seed(key string, blob []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), blob...)
}

func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	blob, ok := s.blobs[key]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return append([]byte(nil), blob...), nil
}

func (s *Store) Put(_ context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}
