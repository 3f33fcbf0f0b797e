package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Config selects and sizes the schedule cache
type Config struct {
	RedisAddr   string // Empty disables Redis
	TTL         time.Duration
	Size        int
	CleanupCron string
}

// Open prefers Redis and falls back to an in-process LRU swept by a cron janitor.
// The returned close function releases the Redis client or stops the janitor.
func Open(ctx context.Context, cfg Config, logger *zap.Logger) (ScheduleCache, func() error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.RedisAddr != "" {
		redisCache, err := NewRedisScheduleCache(ctx, cfg.RedisAddr, cfg.TTL, logger.Named("redis"))
		if err == nil {
			logger.Info("redis schedule cache enabled", zap.String("addr", cfg.RedisAddr))
			return redisCache, redisCache.Close
		}
		logger.Warn("redis unavailable, using in-process cache", zap.Error(err))
	}

	lru := NewLRUScheduleCache(cfg.Size, cfg.TTL)
	janitor := NewJanitor(lru, cfg.CleanupCron, logger.Named("janitor"))
	if err := janitor.Start(); err != nil {
		logger.Error("failed to start cache janitor", zap.Error(err))
		return lru, func() error { return nil }
	}
	return lru, func() error {
		janitor.Stop()
		return nil
	}
}
