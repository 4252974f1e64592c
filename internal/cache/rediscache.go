package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"

	"ict-signal-engine/internal/logging"
)

// RedisCache is an alternate SignalCache backed by go-redis, for
// deployments that run multiple pipeline instances sharing one cache.
// Grounded on the teacher's internal/cache/cache_service.go CacheService
// (redis.Client wrapping, graceful-degradation-on-error idiom), narrowed
// to the signal-cache contract only — no settings/admin-defaults prefixes.
type RedisCache struct {
	client    *redis.Client
	keyPrefix string
	log       *logging.Logger

	hits        atomic.Int64
	misses      atomic.Int64
	evictions   atomic.Int64
	expirations atomic.Int64
}

// NewRedisCache wraps an already-configured *redis.Client. Construction
// does not ping; callers that want a liveness check should call
// client.Ping themselves before passing it in.
func NewRedisCache(client *redis.Client, keyPrefix string) *RedisCache {
	if keyPrefix == "" {
		keyPrefix = "signal:"
	}
	return &RedisCache{client: client, keyPrefix: keyPrefix, log: logging.Default().WithComponent("redis-signal-cache")}
}

type redisEntry struct {
	Value      json.RawMessage `json:"value"`
	EntryPrice float64         `json:"entry_price"`
}

// Set stores value as JSON with the given TTL. Redis's own TTL sweep
// handles expiration; the Expirations counter is not incremented here
// because Redis never returns an explicit "expired" signal on read — an
// absent key after TTL is indistinguishable from a miss.
func (r *RedisCache) Set(key string, value any, ttl time.Duration) {
	r.setWithEntryPrice(key, value, ttl, 0)
}

// SetWithEntryPrice mirrors LRUCache.SetWithEntryPrice for freshness
// re-validation on read.
func (r *RedisCache) SetWithEntryPrice(key string, value any, ttl time.Duration, entryPrice float64) {
	r.setWithEntryPrice(key, value, ttl, entryPrice)
}

func (r *RedisCache) setWithEntryPrice(key string, value any, ttl time.Duration, entryPrice float64) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.log.Error("marshal cache value failed", "key", key, "error", err.Error())
		return
	}
	payload, err := json.Marshal(redisEntry{Value: raw, EntryPrice: entryPrice})
	if err != nil {
		r.log.Error("marshal cache entry failed", "key", key, "error", err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.client.Set(ctx, r.keyPrefix+key, payload, ttl).Err(); err != nil {
		r.log.Warn("redis set failed, degrading to cache miss on next read", "key", key, "error", err.Error())
	}
}

// Get fetches and freshness-checks a cached value. The caller is
// responsible for unmarshaling the returned json.RawMessage into its own
// signal type — RedisCache does not know the pipeline's Signal shape.
func (r *RedisCache) Get(key string, currentPrice func() float64) (any, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := r.client.Get(ctx, r.keyPrefix+key).Bytes()
	if err != nil {
		r.misses.Add(1)
		return nil, false
	}

	var e redisEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		r.log.Error("unmarshal cache entry failed", "key", key, "error", err.Error())
		r.misses.Add(1)
		return nil, false
	}

	if currentPrice != nil && e.EntryPrice > 0 {
		price := currentPrice()
		if price > 0 {
			dist := e.EntryPrice - price
			if dist < 0 {
				dist = -dist
			}
			if dist/price > 0.05 {
				ctx2, cancel2 := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel2()
				_ = r.client.Del(ctx2, r.keyPrefix+key).Err()
				r.misses.Add(1)
				return nil, false
			}
		}
	}

	r.hits.Add(1)
	return e.Value, true
}

// CleanupExpired is a no-op: Redis expires keys on its own, this method
// exists purely to satisfy SignalCache.
func (r *RedisCache) CleanupExpired() int { return 0 }

// Stats returns counters maintained client-side; Size is not tracked and
// is always 0, since it would require a KEYS/SCAN sweep on every call.
func (r *RedisCache) Stats() Stats {
	return Stats{
		Hits:        r.hits.Load(),
		Misses:      r.misses.Load(),
		Evictions:   r.evictions.Load(),
		Expirations: r.expirations.Load(),
	}
}
