package cache

import (
	"testing"
	"time"
)

func TestLRUCacheGetSetRoundTrip(t *testing.T) {
	c := NewLRUCache(10)
	c.SetWithEntryPrice("signal:BTCUSDT:1h", "signal-payload", time.Minute, 100)

	v, ok := c.Get("signal:BTCUSDT:1h", func() float64 { return 101 })
	if !ok {
		t.Fatalf("expected a hit")
	}
	if v != "signal-payload" {
		t.Errorf("expected stored payload, got %v", v)
	}

	stats := c.Stats()
	if stats.Hits != 1 {
		t.Errorf("expected 1 hit, got %d", stats.Hits)
	}
}

func TestLRUCacheMissOnUnknownKey(t *testing.T) {
	c := NewLRUCache(10)
	_, ok := c.Get("signal:ETHUSDT:1h", nil)
	if ok {
		t.Errorf("expected a miss")
	}
	if c.Stats().Misses != 1 {
		t.Errorf("expected 1 miss recorded")
	}
}

func TestLRUCacheExpiresOnRead(t *testing.T) {
	c := NewLRUCache(10)
	c.Set("k", "v", -time.Second) // already expired

	_, ok := c.Get("k", nil)
	if ok {
		t.Errorf("expected expired entry to miss")
	}
	if c.Stats().Expirations != 1 {
		t.Errorf("expected expiration counted, got %+v", c.Stats())
	}
}

func TestLRUCacheInvalidatesOnStaleness(t *testing.T) {
	c := NewLRUCache(10)
	c.SetWithEntryPrice("k", "v", time.Minute, 100)

	// current price has moved 6% away from the stored entry price.
	_, ok := c.Get("k", func() float64 { return 106 })
	if ok {
		t.Errorf("expected stale entry (>5%% drift) to invalidate on read")
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache(2)
	c.Set("a", "a-val", time.Minute)
	c.Set("b", "b-val", time.Minute)
	c.Get("a", nil) // touch a, making b the LRU
	c.Set("c", "c-val", time.Minute)

	if _, ok := c.Get("b", nil); ok {
		t.Errorf("expected b to be evicted as least recently used")
	}
	if c.Stats().Evictions != 1 {
		t.Errorf("expected 1 eviction, got %+v", c.Stats())
	}
	if _, ok := c.Get("a", nil); !ok {
		t.Errorf("expected a to survive eviction")
	}
}

func TestLRUCacheCleanupExpired(t *testing.T) {
	c := NewLRUCache(10)
	c.Set("a", "v", -time.Second)
	c.Set("b", "v", time.Minute)

	removed := c.CleanupExpired()
	if removed != 1 {
		t.Errorf("expected 1 expired entry removed, got %d", removed)
	}
	if c.Stats().Size != 1 {
		t.Errorf("expected 1 surviving entry, got %+v", c.Stats())
	}
}
