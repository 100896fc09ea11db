package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/models"
)

// MongoCache is the L2 persistent tier, adapted unchanged in shape from
// app/services/mongo_cache_service.go: an in-process LRU fronting a
// MongoDB collection of CachedGeocode documents (AddressCache there).
type MongoCache struct {
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.CachedGeocode]
	logger     *zap.Logger

	totalHits int64
	totalMiss int64
}

// NewMongoCache builds the LRU tier and ensures the supporting indexes
// exist on db's geocode_cache collection.
func NewMongoCache(db *mongo.Database, l1Size int, logger *zap.Logger) (*MongoCache, error) {
	l1, err := lru.New[string, *models.CachedGeocode](l1Size)
	if err != nil {
		return nil, fmt.Errorf("build lru cache: %w", err)
	}

	collection := db.Collection("geocode_cache")
	indexModels := []mongo.IndexModel{
		{Keys: bson.D{bson.E{Key: "fingerprint", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{bson.E{Key: "data_generation", Value: 1}}},
		{Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}}},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("could not create geocode_cache indexes", zap.Error(err))
	}

	return &MongoCache{collection: collection, l1Cache: l1, logger: logger}, nil
}

func (c *MongoCache) Get(ctx context.Context, fingerprint string) (*models.CachedGeocode, bool, error) {
	if entry, found := c.l1Cache.Get(fingerprint); found {
		c.totalHits++
		c.logger.Debug("l1 cache hit", zap.String("fingerprint", fingerprint))
		return entry, true, nil
	}

	var entry models.CachedGeocode
	err := c.collection.FindOne(ctx, bson.M{"fingerprint": fingerprint}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			c.totalMiss++
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("query mongo cache: %w", err)
	}

	c.totalHits++
	go c.updateAccessStats(context.Background(), fingerprint)
	c.l1Cache.Add(fingerprint, &entry)

	c.logger.Debug("mongo cache hit", zap.String("fingerprint", fingerprint))
	return &entry, true, nil
}

func (c *MongoCache) Set(ctx context.Context, entry *models.CachedGeocode) error {
	c.l1Cache.Add(entry.Fingerprint, entry)

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"fingerprint": entry.Fingerprint}
	if _, err := c.collection.ReplaceOne(ctx, filter, entry, opts); err != nil {
		c.logger.Error("mongo cache set failed", zap.Error(err), zap.String("fingerprint", entry.Fingerprint))
		return fmt.Errorf("save to mongo cache: %w", err)
	}
	return nil
}

func (c *MongoCache) Delete(ctx context.Context, fingerprint string) error {
	c.l1Cache.Remove(fingerprint)
	if _, err := c.collection.DeleteOne(ctx, bson.M{"fingerprint": fingerprint}); err != nil {
		return fmt.Errorf("delete from mongo cache: %w", err)
	}
	return nil
}

func (c *MongoCache) Clear(ctx context.Context) error {
	c.l1Cache.Purge()
	if _, err := c.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear mongo cache: %w", err)
	}
	c.totalHits, c.totalMiss = 0, 0
	return nil
}

func (c *MongoCache) InvalidateGeneration(ctx context.Context, dataGeneration string) error {
	c.l1Cache.Purge()
	filter := bson.M{"data_generation": bson.M{"$ne": dataGeneration}}
	result, err := c.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("invalidate by generation: %w", err)
	}
	c.logger.Info("invalidated mongo cache", zap.String("data_generation", dataGeneration),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

func (c *MongoCache) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := c.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("count mongo cache documents: %w", err)
	}

	total := c.totalHits + c.totalMiss
	hitRate := float64(0)
	if total > 0 {
		hitRate = float64(c.totalHits) / float64(total)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  c.totalHits,
		TotalMiss:  c.totalMiss,
		TotalItems: mongoCount,
	}, nil
}

func (c *MongoCache) Exists(ctx context.Context, fingerprint string) (bool, error) {
	if c.l1Cache.Contains(fingerprint) {
		return true, nil
	}
	count, err := c.collection.CountDocuments(ctx, bson.M{"fingerprint": fingerprint})
	if err != nil {
		return false, fmt.Errorf("check exists in mongo cache: %w", err)
	}
	return count > 0, nil
}

// GetTTL always returns 0: the persistent tier carries no expiry of its
// own, only InvalidateGeneration drops entries.
func (c *MongoCache) GetTTL(ctx context.Context, fingerprint string) (time.Duration, error) {
	return 0, nil
}

func (c *MongoCache) Close() error { return nil }

// Fingerprint hashes key with sha256, the same fingerprinting scheme
// address_matcher.go uses. The reference store does not compute its keys
// with it; those are loaded as stored columns.
func Fingerprint(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x", hash)
}

func (c *MongoCache) updateAccessStats(ctx context.Context, fingerprint string) {
	filter := bson.M{"fingerprint": fingerprint}
	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := c.collection.UpdateOne(ctx, filter, update); err != nil {
		c.logger.Warn("update access stats failed", zap.Error(err))
	}
}

// WarmUp loads the limit most-accessed entries from MongoDB into the L1
// LRU.
func (c *MongoCache) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := c.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return fmt.Errorf("warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.CachedGeocode
		if err := cursor.Decode(&entry); err != nil {
			c.logger.Warn("decode cache entry during warm up failed", zap.Error(err))
			continue
		}
		c.l1Cache.Add(entry.Fingerprint, &entry)
		count++
	}

	c.logger.Info("cache warm up complete", zap.Int("loaded_items", count), zap.Int("l1_size", c.l1Cache.Len()))
	return nil
}
