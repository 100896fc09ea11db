package services

import (
	"context"
	"time"

	"github.com/jageocoder/abr-geocoder/app/models"
)

// CacheStats reports hit/miss counters for a cache backend.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// IGeocodeCache is the result-cache contract for the /v1/geocode endpoint
// (§6). Adapted from ICacheService: AddressResult becomes CachedGeocode,
// GazetteerVersion becomes a reference-data generation tag.
type IGeocodeCache interface {
	Get(ctx context.Context, fingerprint string) (*models.CachedGeocode, bool, error)
	Set(ctx context.Context, entry *models.CachedGeocode) error
	Delete(ctx context.Context, fingerprint string) error
	Clear(ctx context.Context) error
	InvalidateGeneration(ctx context.Context, dataGeneration string) error
	GetStats(ctx context.Context) (*CacheStats, error)
	Exists(ctx context.Context, fingerprint string) (bool, error)
	GetTTL(ctx context.Context, fingerprint string) (time.Duration, error)
	Close() error
}
