package tenantcache

import (
	"context"
	"sync"
	"time"
)

// MemoryBackend is an in-process Backend for tests and single-node setups.
type MemoryBackend struct {
	mu    sync.RWMutex
	items map[string]memoryItem
	sets  map[string]map[string]struct{}
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		items: make(map[string]memoryItem),
		sets:  make(map[string]map[string]struct{}),
	}
}

func (b *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	b.mu.RLock()
	item, ok := b.items[key]
	b.mu.RUnlock()

	if !ok || (!item.expiresAt.IsZero() && time.Now().After(item.expiresAt)) {
		return nil, ErrCacheMiss
	}
	return item.value, nil
}

func (b *MemoryBackend) GetMany(ctx context.Context, keys ...string) (map[string][]byte, error) {
	result := make(map[string][]byte, len(keys))
	for _, key := range keys {
		if value, err := b.Get(ctx, key); err == nil {
			result[key] = value
		}
	}
	return result, nil
}

func (b *MemoryBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = time.Now().Add(ttl)
	}
	b.mu.Lock()
	b.items[key] = item
	b.mu.Unlock()
	return nil
}

func (b *MemoryBackend) Delete(_ context.Context, keys ...string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if _, ok := b.items[key]; ok {
			delete(b.items, key)
			deleted++
		}
		if _, ok := b.sets[key]; ok {
			delete(b.sets, key)
		}
	}
	return deleted, nil
}

func (b *MemoryBackend) AddToSet(_ context.Context, key string, members ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.sets[key]
	if !ok {
		set = make(map[string]struct{})
		b.sets[key] = set
	}
	for _, m := range members {
		set[m] = struct{}{}
	}
	return nil
}

func (b *MemoryBackend) SetMembers(_ context.Context, key string) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	set, ok := b.sets[key]
	if !ok {
		return nil, nil
	}
	members := make([]string, 0, len(set))
	for m := range set {
		members = append(members, m)
	}
	return members, nil
}

func (b *MemoryBackend) Ping(context.Context) error {
	return nil
}
