package mirror

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisHealthKeyPrefix = "mirror:cooldown:"

// RedisCmdable is the part of a redis client the health store needs.
// It is satisfied by redis.UniversalClient.
type RedisCmdable interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
}

// RedisHealthStore shares cool-down marks between replicas. Marks expire
// through the key TTL.
type RedisHealthStore struct {
	rdb RedisCmdable
}

var _ HealthStore = (*RedisHealthStore)(nil)

func NewRedisHealthStore(rdb RedisCmdable) *RedisHealthStore {
	return &RedisHealthStore{rdb: rdb}
}

func (s *RedisHealthStore) MarkFailed(ctx context.Context, mirror string, cooldown time.Duration) error {
	return s.rdb.Set(ctx, redisHealthKeyPrefix+mirror, time.Now().Unix(), cooldown).Err()
}

func (s *RedisHealthStore) Recover(ctx context.Context, mirror string) error {
	return s.rdb.Del(ctx, redisHealthKeyPrefix+mirror).Err()
}

func (s *RedisHealthStore) Cooling(ctx context.Context, mirrors []string) (map[string]bool, error) {
	if len(mirrors) == 0 {
		return nil, nil
	}
	keys := make([]string, len(mirrors))
	for i, m := range mirrors {
		keys[i] = redisHealthKeyPrefix + m
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read mirror cooldowns")
	}
	res := make(map[string]bool)
	for i, v := range vals {
		if v != nil {
			res[mirrors[i]] = true
		}
	}
	return res, nil
}
