package models

import (
	"time"

	"github.com/jageocoder/abr-geocoder/internal/format"
)

// CachedGeocode is the document the two-tier cache (app/services) persists:
// a resolved Record plus the bookkeeping the cache services need to expire
// and invalidate entries. Adapted from app/models/address_cache.go —
// ParsedResult's Vietnamese AddressResult becomes a format.Record, and
// GazetteerVersion becomes DataGeneration (the reference store's load
// generation, bumped each time `download` refreshes it).
type CachedGeocode struct {
	Fingerprint    string        `bson:"fingerprint" json:"fingerprint"`
	Input          string        `bson:"input" json:"input"`
	Record         format.Record `bson:"record" json:"record"`
	DataGeneration string        `bson:"data_generation" json:"data_generation"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at"`
	LastAccessed   time.Time     `bson:"last_accessed" json:"last_accessed"`
	AccessCount    int           `bson:"access_count" json:"access_count"`
}

// NewCachedGeocode wraps a resolved Record for the given input.
func NewCachedGeocode(fingerprint, input string, rec format.Record, dataGeneration string) *CachedGeocode {
	now := time.Now()
	return &CachedGeocode{
		Fingerprint:    fingerprint,
		Input:          input,
		Record:         rec,
		DataGeneration: dataGeneration,
		CreatedAt:      now,
		LastAccessed:   now,
		AccessCount:    1,
	}
}

// UpdateAccess bumps the last-accessed timestamp and hit counter.
func (c *CachedGeocode) UpdateAccess() {
	c.LastAccessed = time.Now()
	c.AccessCount++
}

// IsExpired reports whether the entry is older than ttl.
func (c *CachedGeocode) IsExpired(ttl time.Duration) bool {
	return time.Since(c.CreatedAt) > ttl
}

// IsStaleGeneration reports whether the entry was cached against a
// reference-data generation older than current.
func (c *CachedGeocode) IsStaleGeneration(current string) bool {
	return c.DataGeneration != current
}
