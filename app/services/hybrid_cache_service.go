package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/models"
)

// HybridCache composes RedisCache (L1) and MongoCache (L2), adapted
// unchanged in shape from app/services/hybrid_cache_service.go.
type HybridCache struct {
	redis  *RedisCache
	mongo  *MongoCache
	logger *zap.Logger
}

// NewHybridCache builds a HybridCache over already-constructed tiers.
func NewHybridCache(redis *RedisCache, mongo *MongoCache, logger *zap.Logger) *HybridCache {
	return &HybridCache{redis: redis, mongo: mongo, logger: logger}
}

func (h *HybridCache) Get(ctx context.Context, fingerprint string) (*models.CachedGeocode, bool, error) {
	entry, found, err := h.redis.Get(ctx, fingerprint)
	if err != nil {
		h.logger.Warn("redis cache error, falling back to mongo", zap.Error(err))
	} else if found {
		h.logger.Debug("l1 cache hit (redis)", zap.String("fingerprint", fingerprint))
		return entry, true, nil
	}

	entry, found, err = h.mongo.Get(ctx, fingerprint)
	if err != nil {
		return nil, false, err
	}
	if !found {
		h.logger.Debug("cache miss (redis and mongo)", zap.String("fingerprint", fingerprint))
		return nil, false, nil
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.redis.Set(bgCtx, entry); err != nil {
			h.logger.Warn("sync mongo->redis failed", zap.Error(err), zap.String("fingerprint", fingerprint))
		}
	}()

	h.logger.Debug("l2 cache hit (mongo)", zap.String("fingerprint", fingerprint))
	return entry, true, nil
}

func (h *HybridCache) Set(ctx context.Context, entry *models.CachedGeocode) error {
	errCh := make(chan error, 2)

	go func() { errCh <- h.redis.Set(ctx, entry) }()
	go func() { errCh <- h.mongo.Set(ctx, entry) }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("cache errors: %v", errs)
	}
	return nil
}

func (h *HybridCache) Delete(ctx context.Context, fingerprint string) error {
	errCh := make(chan error, 2)
	go func() { errCh <- h.redis.Delete(ctx, fingerprint) }()
	go func() { errCh <- h.mongo.Delete(ctx, fingerprint) }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("delete errors: %v", errs)
	}
	return nil
}

func (h *HybridCache) Clear(ctx context.Context) error {
	errCh := make(chan error, 2)
	go func() { errCh <- h.redis.Clear(ctx) }()
	go func() { errCh <- h.mongo.Clear(ctx) }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("clear errors: %v", errs)
	}
	h.logger.Info("cleared hybrid cache (redis + mongo)")
	return nil
}

func (h *HybridCache) InvalidateGeneration(ctx context.Context, dataGeneration string) error {
	errCh := make(chan error, 2)
	go func() { errCh <- h.redis.InvalidateGeneration(ctx, dataGeneration) }()
	go func() { errCh <- h.mongo.InvalidateGeneration(ctx, dataGeneration) }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalidate errors: %v", errs)
	}
	h.logger.Info("invalidated hybrid cache", zap.String("data_generation", dataGeneration))
	return nil
}

func (h *HybridCache) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, redisErr := h.redis.GetStats(ctx)
	mongoStats, mongoErr := h.mongo.GetStats(ctx)

	if redisErr != nil && mongoErr != nil {
		return nil, fmt.Errorf("both redis and mongo failed: %v, %v", redisErr, mongoErr)
	}

	combined := &CacheStats{}
	switch {
	case redisErr == nil && mongoErr == nil:
		totalHits := redisStats.TotalHits + mongoStats.TotalHits
		totalMiss := redisStats.TotalMiss + mongoStats.TotalMiss
		total := totalHits + totalMiss
		if total > 0 {
			combined.HitRate = float64(totalHits) / float64(total)
		}
		combined.TotalHits = totalHits
		combined.TotalMiss = totalMiss
		combined.TotalItems = redisStats.TotalItems + mongoStats.TotalItems
	case redisErr == nil:
		*combined = *redisStats
	default:
		*combined = *mongoStats
	}
	return combined, nil
}

func (h *HybridCache) Exists(ctx context.Context, fingerprint string) (bool, error) {
	exists, err := h.redis.Exists(ctx, fingerprint)
	if err != nil {
		h.logger.Warn("redis exists check failed, falling back to mongo", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return h.mongo.Exists(ctx, fingerprint)
}

func (h *HybridCache) GetTTL(ctx context.Context, fingerprint string) (time.Duration, error) {
	return h.redis.GetTTL(ctx, fingerprint)
}

func (h *HybridCache) Close() error {
	errCh := make(chan error, 2)
	go func() { errCh <- h.redis.Close() }()
	go func() { errCh <- h.mongo.Close() }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// WarmUpFromMongo warms the Redis-less Mongo L1 LRU before traffic starts.
func (h *HybridCache) WarmUpFromMongo(ctx context.Context, limit int) error {
	return h.mongo.WarmUp(ctx, limit)
}
