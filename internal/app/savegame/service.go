package savegame

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"shiplife/internal/app/ports"
	"shiplife/internal/domain/catalog"
	"shiplife/internal/domain/progression"
)

const DefaultKey = "shiplife_save"

// Service is the single owner of the save. Reads return copies; writes run
// against a copy and are committed only on success, then persisted after the
// debounce window. A zero Debounce writes on every commit.
type Service struct {
	Store    ports.SnapshotStore
	Catalog  *catalog.Catalog
	Notifier ports.Notifier
	Logger   *slog.Logger
	Key      string
	Debounce time.Duration

	mu     sync.Mutex
	state  progression.State
	loaded bool
	dirty  bool
	timer  *time.Timer

	// writeMu is taken before mu.
	writeMu sync.Mutex
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) key() string {
	if strings.TrimSpace(s.Key) == "" {
		return DefaultKey
	}
	return s.Key
}

func (s *Service) notify(kind ports.NotificationKind, msg string) {
	ports.Notify(s.Notifier, kind, msg)
}

// Load reads the stored snapshot. A missing save starts fresh; an unreadable
// one starts fresh with a warning. Per-field problems keep the rest of the
// save and are reported as warnings.
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Service) loadLocked(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("savegame: store is required")
	}
	s.loaded = true
	s.dirty = false

	blob, err := s.Store.Get(ctx, s.key())
	switch {
	case errors.Is(err, ports.ErrNotFound):
		s.state = progression.New(s.Catalog)
		s.logger().Info("no save found, starting fresh", "key", s.key())
		return nil
	case err != nil:
		s.state = progression.New(s.Catalog)
		s.logger().Warn("save could not be read, starting fresh", "key", s.key(), "err", err)
		s.notify(ports.NotifyWarning, "Save could not be read. Starting a new game.")
		return nil
	}

	state, warnings, err := Decode(blob, s.Catalog)
	if err != nil {
		s.state = progression.New(s.Catalog)
		s.logger().Warn("save rejected, starting fresh", "key", s.key(), "err", err)
		if errors.Is(err, ErrSchemaMismatch) {
			s.notify(ports.NotifyWarning, "Save was written by a newer version. Starting a new game.")
		} else {
			s.notify(ports.NotifyWarning, "Save is corrupted. Starting a new game.")
		}
		return nil
	}
	for _, w := range warnings {
		s.logger().Warn("save field reset", "key", s.key(), "detail", w)
		s.notify(ports.NotifyWarning, w)
	}
	s.state = state

	// Rewrite saves that migration or normalization changed.
	if fresh, err := Encode(state, s.Catalog); err == nil && !bytes.Equal(fresh, blob) {
		s.dirty = true
		s.scheduleLocked()
	}
	s.logger().Info("save loaded", "key", s.key(), "warnings", len(warnings))
	return nil
}

func (s *Service) ensureLoaded(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	return s.loadLocked(ctx)
}

func (s *Service) View(ctx context.Context) (progression.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ensureLoaded(ctx); err != nil {
		return progression.State{}, err
	}
	return s.state.Clone(), nil
}

func (s *Service) Mutate(ctx context.Context, fn func(state *progression.State) error) error {
	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	next := s.state.Clone()
	if err := fn(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.dirty = true
	immediate := s.Debounce <= 0
	if !immediate {
		s.scheduleLocked()
	}
	s.mu.Unlock()

	if immediate {
		_ = s.Flush(ctx)
	}
	return nil
}

func (s *Service) scheduleLocked() {
	if s.Debounce <= 0 {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.Debounce, func() {
		_ = s.Flush(context.Background())
	})
}

// Flush writes the state if anything changed since the last write.
func (s *Service) Flush(ctx context.Context) error {
	s.mu.Lock()
	dirty := s.dirty
	s.mu.Unlock()
	if !dirty {
		return nil
	}
	return s.Save(ctx)
}

// Save writes the current state now. Saves are serialized from encode to
// write, so the store never ends on an older snapshot. A failed write leaves
// memory untouched and keeps the state marked for the next attempt.
func (s *Service) Save(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if err := s.ensureLoaded(ctx); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	blob, err := Encode(s.state, s.Catalog)
	s.dirty = false
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encode save: %w", err)
	}

	if err := s.Store.Put(ctx, s.key(), blob); err != nil {
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		s.logger().Warn("save failed", "key", s.key(), "err", err)
		s.notify(ports.NotifyWarning, "Progress could not be saved.")
		return fmt.Errorf("save: %w", err)
	}
	s.logger().Debug("save written", "key", s.key(), "bytes", len(blob))
	return nil
}

// Export returns the snapshot blob of the current state.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	state, err := s.View(ctx)
	if err != nil {
		return nil, err
	}
	return Encode(state, s.Catalog)
}

// Import replaces the state with a snapshot blob and saves it. Corrupt or
// newer blobs are rejected and the current state is kept.
func (s *Service) Import(ctx context.Context, blob []byte) ([]string, error) {
	state, warnings, err := Decode(blob, s.Catalog)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.loaded = true
	s.state = state
	s.dirty = true
	s.mu.Unlock()
	s.logger().Info("save imported", "key", s.key(), "warnings", len(warnings))
	return warnings, s.Save(ctx)
}

// Reset discards the current progress and saves a fresh state.
func (s *Service) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.loaded = true
	s.state = progression.New(s.Catalog)
	s.dirty = true
	s.mu.Unlock()
	s.logger().Info("save reset", "key", s.key())
	return s.Save(ctx)
}

// Close flushes pending writes.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.Flush(ctx)
}
