package inmemory

import (
	"sync"

	"shiplife/internal/app/ports"
)

// DefaultCapacity bounds the feed; the oldest entries are dropped first.
const DefaultCapacity = 50

type Feed struct {
	mu       sync.Mutex
	capacity int
	items    []ports.Notification
}

func NewFeed(capacity int) *Feed {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Feed{capacity: capacity}
}

func (f *Feed) Notify(n ports.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, n)
	if over := len(f.items) - f.capacity; over > 0 {
		f.items = append([]ports.Notification(nil), f.items[over:]...)
	}
}

func (f *Feed) Drain() []ports.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := f.items
	f.items = nil
	return out
}

var _ ports.NotificationFeed = (*Feed)(nil)
