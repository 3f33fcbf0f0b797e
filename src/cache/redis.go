package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisScheduleCache keeps JSON encoded schedules in Redis
type RedisScheduleCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisScheduleCache connects to addr and verifies the connection
func NewRedisScheduleCache(ctx context.Context, addr string, ttl time.Duration, logger *zap.Logger) (*RedisScheduleCache, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}

	return NewRedisScheduleCacheWithClient(rdb, ttl, logger), nil
}

// NewRedisScheduleCacheWithClient wraps an existing client
func NewRedisScheduleCacheWithClient(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisScheduleCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisScheduleCache{client: client, ttl: ttl, logger: logger}
}

func (r *RedisScheduleCache) Get(ctx context.Context, key string) (*CachedSchedule, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.Warn("redis get failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var schedule CachedSchedule
	if err := json.Unmarshal(val, &schedule); err != nil {
		r.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &schedule, true
}

func (r *RedisScheduleCache) Set(ctx context.Context, key string, value *CachedSchedule) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}
	return r.client.Set(ctx, key, data, r.ttl).Err()
}

func (r *RedisScheduleCache) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *RedisScheduleCache) Close() error {
	return r.client.Close()
}
