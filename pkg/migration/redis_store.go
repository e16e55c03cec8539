package migration

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLockStore keeps migration locks in Redis. Acquisition uses SET NX
// with a server-side TTL, so acquisition is atomic and stale locks expire
// without any reaper process.
type RedisLockStore struct {
	client redis.UniversalClient
}

// NewRedisLockStore creates a lock store backed by the given Redis client.
func NewRedisLockStore(client redis.UniversalClient) *RedisLockStore {
	return &RedisLockStore{client: client}
}

func (s *RedisLockStore) Acquire(ctx context.Context, key string, lock Lock, ttl time.Duration) (bool, error) {
	data, err := json.Marshal(lock)
	if err != nil {
		return false, errors.Join(ErrLockStoreUnavailable, err)
	}
	ok, err := s.client.SetNX(ctx, key, data, ttl).Result()
	if err != nil {
		return false, errors.Join(ErrLockStoreUnavailable, err)
	}
	return ok, nil
}

func (s *RedisLockStore) Get(ctx context.Context, key string) (*Lock, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, errors.Join(ErrLockStoreUnavailable, err)
	}
	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		return nil, errors.Join(ErrLockStoreUnavailable, err)
	}
	return &lock, nil
}

func (s *RedisLockStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return errors.Join(ErrLockStoreUnavailable, err)
	}
	return nil
}

// LockedForDB scans for any component lock under the database alias.
// Migration status is an out-of-band operator query, so the SCAN cost is
// acceptable here; the request hot path never calls this.
func (s *RedisLockStore) LockedForDB(ctx context.Context, dbAlias string) (bool, error) {
	pattern := lockKeyPatternForDB(dbAlias)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if strings.HasPrefix(iter.Val(), lockKeyPrefix) {
			return true, nil
		}
	}
	if err := iter.Err(); err != nil {
		return false, errors.Join(ErrLockStoreUnavailable, err)
	}
	return false, nil
}
