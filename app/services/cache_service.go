package services

import (
	"context"
	"sync"
	"time"

	"github.com/jageocoder/abr-geocoder/app/models"
)

// LocalCache is an in-memory, mutex-protected TTL cache: a map of entries
// keyed by lookup fingerprint, each carrying its own expiry timestamp.
// Used standalone in tests and as the fallback cache when Redis or MongoDB
// is not configured, or when Redis is unreachable.
type LocalCache struct {
	cache      map[string]*models.CachedGeocode
	timestamps map[string]time.Time
	mu         sync.RWMutex
	ttl        time.Duration
}

// NewLocalCache builds an empty LocalCache with the given TTL.
func NewLocalCache(ttl time.Duration) *LocalCache {
	return &LocalCache{
		cache:      make(map[string]*models.CachedGeocode),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
	}
}

func (c *LocalCache) Get(ctx context.Context, fingerprint string) (*models.CachedGeocode, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache[fingerprint]
	if !exists {
		return nil, false, nil
	}
	if c.isExpired(fingerprint) {
		go c.deleteExpired(fingerprint)
		return nil, false, nil
	}
	return entry, true, nil
}

func (c *LocalCache) Set(ctx context.Context, entry *models.CachedGeocode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.timestamps[entry.Fingerprint] = time.Now()
	c.cache[entry.Fingerprint] = entry
	return nil
}

func (c *LocalCache) Delete(ctx context.Context, fingerprint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, fingerprint)
	delete(c.timestamps, fingerprint)
	return nil
}

func (c *LocalCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache = make(map[string]*models.CachedGeocode)
	c.timestamps = make(map[string]time.Time)
	return nil
}

// InvalidateGeneration drops every entry whose DataGeneration does not
// match current.
func (c *LocalCache) InvalidateGeneration(ctx context.Context, dataGeneration string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key, entry := range c.cache {
		if entry.IsStaleGeneration(dataGeneration) {
			delete(c.cache, key)
			delete(c.timestamps, key)
		}
	}
	return nil
}

// Size returns the number of entries currently held, expired or not.
func (c *LocalCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.cache)
}

func (c *LocalCache) GetStats(ctx context.Context) (*CacheStats, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var hits, misses int64
	for key, entry := range c.cache {
		if c.isExpired(key) {
			continue
		}
		hits += int64(entry.AccessCount)
	}
	total := hits + misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(len(c.cache)),
	}, nil
}

// CleanupExpired removes every entry past its TTL.
func (c *LocalCache) CleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.cache {
		if c.isExpired(key) {
			delete(c.cache, key)
			delete(c.timestamps, key)
		}
	}
}

func (c *LocalCache) isExpired(key string) bool {
	timestamp, exists := c.timestamps[key]
	if !exists {
		return true
	}
	return time.Since(timestamp) > c.ttl
}

func (c *LocalCache) deleteExpired(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.cache, key)
	delete(c.timestamps, key)
}

func (c *LocalCache) Exists(ctx context.Context, fingerprint string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.cache[fingerprint]
	return exists, nil
}

func (c *LocalCache) GetTTL(ctx context.Context, fingerprint string) (time.Duration, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	timestamp, exists := c.timestamps[fingerprint]
	if !exists {
		return 0, nil
	}
	remaining := c.ttl - time.Since(timestamp)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// StartCleanupWorker runs CleanupExpired on a ticker for the life of the
// process.
func (c *LocalCache) StartCleanupWorker(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for range ticker.C {
			c.CleanupExpired()
		}
	}()
}

func (c *LocalCache) Close() error { return nil }
