package biz

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/vietsaga/vietsaga/pkg/utils/json"
)

// RouteCacheConfig configures the routing result cache.
type RouteCacheConfig struct {
	Enabled   bool
	TTL       time.Duration
	KeyPrefix string
}

// RouteCache memoizes routing decisions in Redis. Identical questions with
// the same agent hint short-circuit analysis and retrieval. All cache
// failures degrade to a miss.
type RouteCache struct {
	redis  *goredis.Client
	config *RouteCacheConfig
}

// NewRouteCache creates a route cache. A nil config disables caching.
func NewRouteCache(redis *goredis.Client, config *RouteCacheConfig) *RouteCache {
	if config == nil {
		config = &RouteCacheConfig{
			Enabled:   false,
			TTL:       10 * time.Minute,
			KeyPrefix: "vietsaga:route:",
		}
	}
	return &RouteCache{redis: redis, config: config}
}

func (c *RouteCache) cacheKey(question, agentHint string) string {
	hash := sha256.Sum256([]byte(agentHint + "\x00" + question))
	return c.config.KeyPrefix + hex.EncodeToString(hash[:])
}

// Get returns the cached routing result, or nil on miss or any failure.
func (c *RouteCache) Get(ctx context.Context, question, agentHint string) *RouteResult {
	if !c.config.Enabled || c.redis == nil {
		return nil
	}

	key := c.cacheKey(question, agentHint)
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if err != goredis.Nil {
			logger.Warnw("Route cache read failed", "error", err, "key", key)
		}
		return nil
	}

	var result RouteResult
	if err := json.Unmarshal(data, &result); err != nil {
		logger.Warnw("Dropping corrupt route cache entry", "error", err, "key", key)
		_ = c.redis.Del(ctx, key).Err()
		return nil
	}

	logger.Debugw("Route cache hit", "key", key, "call_agent", result.CallAgent)
	return &result
}

// Set stores a routing result. Failures are logged and swallowed.
func (c *RouteCache) Set(ctx context.Context, question, agentHint string, result *RouteResult) {
	if !c.config.Enabled || c.redis == nil || result == nil {
		return
	}

	data, err := json.Marshal(result)
	if err != nil {
		logger.Warnw("Route cache marshal failed", "error", err)
		return
	}

	key := c.cacheKey(question, agentHint)
	if err := c.redis.Set(ctx, key, data, c.config.TTL).Err(); err != nil {
		logger.Warnw("Route cache write failed", "error", err, "key", key)
	}
}

// Clear removes all cached routing results.
func (c *RouteCache) Clear(ctx context.Context) error {
	if !c.config.Enabled || c.redis == nil {
		return nil
	}

	iter := c.redis.Scan(ctx, 0, c.config.KeyPrefix+"*", 0).Iterator()
	deleted := 0
	for iter.Next(ctx) {
		if err := c.redis.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warnw("Route cache delete failed", "error", err, "key", iter.Val())
			continue
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return err
	}

	logger.Infow("Route cache cleared", "deleted", deleted)
	return nil
}
