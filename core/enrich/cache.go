package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"achievement-hub/core/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	cachePrefix = "hltb:"
	missMarker  = "-"
)

// KV is the subset of the Redis client the cache needs.
type KV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache decorates a Lookup with a Redis-backed cache. Misses are cached too, so a
// title without a match is not searched again until the entry expires. Cache errors are
// logged and fall through to the wrapped lookup.
type RedisCache struct {
	next   Lookup
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCache wraps next with a cache stored in kv.
func NewRedisCache(next Lookup, kv KV, ttl time.Duration, logger *zap.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisCache{next: next, kv: kv, ttl: ttl, logger: logger}
}

// NewRedisClient connects to Redis and verifies the connection with a ping.
func NewRedisClient(ctx context.Context, cfg CacheConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 10 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// GetGameData returns the cached answer for name, or asks the wrapped lookup and caches
// what it returns. Lookup errors are never cached.
func (c *RedisCache) GetGameData(ctx context.Context, name string) (*models.Estimate, error) {
	key := cachePrefix + strings.ToLower(Normalize(name))

	raw, err := c.kv.Get(ctx, key).Result()
	switch {
	case err == nil:
		if raw == missMarker {
			return nil, nil
		}
		var est models.Estimate
		if jerr := json.Unmarshal([]byte(raw), &est); jerr == nil {
			return &est, nil
		}
		c.logger.Warn("Discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("Estimate cache read failed", zap.String("key", key), zap.Error(err))
	}

	est, err := c.next.GetGameData(ctx, name)
	if err != nil {
		return nil, err
	}

	value := missMarker
	if est != nil {
		b, merr := json.Marshal(est)
		if merr != nil {
			return est, nil
		}
		value = string(b)
	}
	if serr := c.kv.Set(ctx, key, value, c.ttl).Err(); serr != nil {
		c.logger.Warn("Estimate cache write failed", zap.String("key", key), zap.Error(serr))
	}
	return est, nil
}
