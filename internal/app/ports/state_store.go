package ports

import (
	"context"

	"shiplife/internal/domain/progression"
)

// StateStore owns the single save. Mutate runs fn against a copy and commits
// it only when fn returns nil.
type StateStore interface {
	View(ctx context.Context) (progression.State, error)
	Mutate(ctx context.Context, fn func(state *progression.State) error) error
}

// Flusher forces pending writes out.
type Flusher interface {
	Flush(ctx context.Context) error
}
