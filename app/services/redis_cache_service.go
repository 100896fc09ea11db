package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/models"
)

// RedisCache is the L1 hot tier, adapted unchanged in shape from
// app/services/redis_cache_service.go: AddressResult becomes CachedGeocode,
// the key prefix becomes abr_geocoder:.
type RedisCache struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
	ttl    time.Duration

	hits   int64
	misses int64
}

// NewRedisCache dials redisURL and verifies connectivity with Ping before
// returning, failing fast at construction rather than on the first
// lookup.
func NewRedisCache(redisURL string, ttl time.Duration, logger *zap.Logger) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisCache{
		client: client,
		logger: logger,
		prefix: "abr_geocoder:",
		ttl:    ttl,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, fingerprint string) (*models.CachedGeocode, bool, error) {
	key := c.prefix + fingerprint

	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		c.misses++
		return nil, false, nil
	}
	if err != nil {
		c.logger.Error("redis get failed", zap.Error(err), zap.String("key", key))
		return nil, false, err
	}

	var entry models.CachedGeocode
	if err := json.Unmarshal([]byte(val), &entry); err != nil {
		c.logger.Error("unmarshal cached geocode failed", zap.Error(err))
		return nil, false, err
	}

	c.hits++
	c.logger.Debug("redis cache hit", zap.String("fingerprint", fingerprint))
	return &entry, true, nil
}

func (c *RedisCache) Set(ctx context.Context, entry *models.CachedGeocode) error {
	key := c.prefix + entry.Fingerprint

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cached geocode: %w", err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Error("redis set failed", zap.Error(err), zap.String("key", key))
		return err
	}
	c.logger.Debug("stored in redis cache", zap.String("fingerprint", entry.Fingerprint))
	return nil
}

func (c *RedisCache) Delete(ctx context.Context, fingerprint string) error {
	key := c.prefix + fingerprint
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.Error("redis delete failed", zap.Error(err), zap.String("key", key))
		return err
	}
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	pattern := c.prefix + "*"
	keys, err := c.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	if len(keys) > 0 {
		if err := c.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete keys: %w", err)
		}
	}
	c.logger.Info("cleared redis cache", zap.Int("keys_deleted", len(keys)))
	return nil
}

// InvalidateGeneration has no per-generation index in Redis, so it falls
// back to a full Clear.
func (c *RedisCache) InvalidateGeneration(ctx context.Context, dataGeneration string) error {
	return c.Clear(ctx)
}

func (c *RedisCache) GetStats(ctx context.Context) (*CacheStats, error) {
	if _, err := c.client.Info(ctx, "memory").Result(); err != nil {
		c.logger.Warn("could not fetch redis memory info", zap.Error(err))
	}

	total := c.hits + c.misses
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	keys, err := c.client.Keys(ctx, c.prefix+"*").Result()
	totalItems := int64(0)
	if err == nil {
		totalItems = int64(len(keys))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  c.hits,
		TotalMiss:  c.misses,
		TotalItems: totalItems,
	}, nil
}

func (c *RedisCache) Exists(ctx context.Context, fingerprint string) (bool, error) {
	n, err := c.client.Exists(ctx, c.prefix+fingerprint).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *RedisCache) GetTTL(ctx context.Context, fingerprint string) (time.Duration, error) {
	return c.client.TTL(ctx, c.prefix+fingerprint).Result()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
