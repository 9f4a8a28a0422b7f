package insights

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ignite/commerce-insights/internal/pkg/logger"
)

// PayloadCache caches rendered JSON payloads in Redis, keyed by period, so
// repeated dashboard loads skip recomputation. A nil client disables
// caching; every method degrades to a miss or a no-op. Cache errors are
// logged and swallowed: serving fresh data beats failing a request.
type PayloadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPayloadCache wraps a Redis client. client may be nil.
func NewPayloadCache(client *redis.Client, ttl time.Duration) *PayloadCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &PayloadCache{client: client, ttl: ttl}
}

// Get returns the cached payload for key and whether it was present.
func (c *PayloadCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		logger.Warn("payload cache get failed", "key", key, "error", err)
		return nil, false
	}
	return data, true
}

// Set stores a payload under key with the configured TTL.
func (c *PayloadCache) Set(ctx context.Context, key string, data []byte) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		logger.Warn("payload cache set failed", "key", key, "error", err)
	}
}

// Invalidate drops every cached payload with the given prefix. Called after
// a snapshot refresh so stale dashboards are not served.
func (c *PayloadCache) Invalidate(ctx context.Context, prefix string) {
	if c == nil || c.client == nil {
		return
	}
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		logger.Warn("payload cache scan failed", "prefix", prefix, "error", err)
		return
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			logger.Warn("payload cache invalidate failed", "prefix", prefix, "error", err)
		}
	}
}
