package migration

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryLockStore is an in-process lock store for tests and single-node
// deployments. It mirrors the Redis store's semantics: atomic acquisition
// and TTL-based staleness reclaim.
type MemoryLockStore struct {
	mu    sync.Mutex
	locks map[string]memoryLock
}

type memoryLock struct {
	lock      Lock
	expiresAt time.Time
}

// NewMemoryLockStore creates an empty in-memory lock store.
func NewMemoryLockStore() *MemoryLockStore {
	return &MemoryLockStore{locks: make(map[string]memoryLock)}
}

func (s *MemoryLockStore) Acquire(_ context.Context, key string, lock Lock, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if held, exists := s.locks[key]; exists && time.Now().Before(held.expiresAt) {
		return false, nil
	}
	// Either unheld or stale; stale locks are reclaimed by overwriting.
	s.locks[key] = memoryLock{lock: lock, expiresAt: time.Now().Add(ttl)}
	return true, nil
}

func (s *MemoryLockStore) Get(_ context.Context, key string) (*Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	held, exists := s.locks[key]
	if !exists || time.Now().After(held.expiresAt) {
		return nil, nil
	}
	lock := held.lock
	return &lock, nil
}

func (s *MemoryLockStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, key)
	return nil
}

func (s *MemoryLockStore) LockedForDB(_ context.Context, dbAlias string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := lockKeyPrefix + dbAlias + ":"
	now := time.Now()
	for key, held := range s.locks {
		if strings.HasPrefix(key, prefix) && now.Before(held.expiresAt) {
			return true, nil
		}
	}
	return false, nil
}
