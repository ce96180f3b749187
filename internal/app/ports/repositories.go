package ports

import "context"

// SnapshotStore keeps whole-state blobs under a key. Get returns ErrNotFound
// when nothing is stored.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, blob []byte) error
	Delete(ctx context.Context, key string) error
}
