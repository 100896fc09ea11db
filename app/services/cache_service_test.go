package services

import (
	"context"
	"testing"
	"time"

	"github.com/jageocoder/abr-geocoder/app/models"
	"github.com/jageocoder/abr-geocoder/internal/format"
)

func sampleCachedGeocode(fingerprint, generation string) *models.CachedGeocode {
	rec := format.Record{Input: "東京都千代田区", MatchLevel: "city"}
	return models.NewCachedGeocode(fingerprint, rec.Input, rec, generation)
}

func TestLocalCache_SetThenGet(t *testing.T) {
	testCases := []struct {
		name        string
		fingerprint string
	}{
		{name: "plain fingerprint", fingerprint: "sha256:abc"},
		{name: "empty fingerprint", fingerprint: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := NewLocalCache(time.Minute)
			entry := sampleCachedGeocode(tc.fingerprint, "gen-1")

			if err := c.Set(context.Background(), entry); err != nil {
				t.Fatalf("Set() error: %v", err)
			}

			got, found, err := c.Get(context.Background(), tc.fingerprint)
			if err != nil {
				t.Fatalf("Get() error: %v", err)
			}
			if !found {
				t.Fatalf("expected entry to be found")
			}
			if got.Input != entry.Input {
				t.Errorf("got Input %q, want %q", got.Input, entry.Input)
			}
			t.Logf("fingerprint=%q -> input=%q", tc.fingerprint, got.Input)
		})
	}
}

func TestLocalCache_GetMissReturnsNotFound(t *testing.T) {
	c := NewLocalCache(time.Minute)

	_, found, err := c.Get(context.Background(), "sha256:missing")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if found {
		t.Errorf("expected miss, got a hit")
	}
}

func TestLocalCache_ExpiredEntryIsEvicted(t *testing.T) {
	c := NewLocalCache(time.Millisecond)
	entry := sampleCachedGeocode("sha256:expiring", "gen-1")

	if err := c.Set(context.Background(), entry); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	_, found, err := c.Get(context.Background(), "sha256:expiring")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if found {
		t.Errorf("expected expired entry to be treated as a miss")
	}
}

func TestLocalCache_DeleteRemovesEntry(t *testing.T) {
	c := NewLocalCache(time.Minute)
	entry := sampleCachedGeocode("sha256:todelete", "gen-1")
	_ = c.Set(context.Background(), entry)

	if err := c.Delete(context.Background(), "sha256:todelete"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	_, found, _ := c.Get(context.Background(), "sha256:todelete")
	if found {
		t.Errorf("expected entry to be gone after Delete")
	}
}

func TestLocalCache_ClearEmptiesCache(t *testing.T) {
	c := NewLocalCache(time.Minute)
	_ = c.Set(context.Background(), sampleCachedGeocode("sha256:a", "gen-1"))
	_ = c.Set(context.Background(), sampleCachedGeocode("sha256:b", "gen-1"))

	if err := c.Clear(context.Background()); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}
	if got := c.Size(); got != 0 {
		t.Errorf("got Size() %d after Clear, want 0", got)
	}
}

func TestLocalCache_InvalidateGenerationDropsStaleOnly(t *testing.T) {
	c := NewLocalCache(time.Minute)
	_ = c.Set(context.Background(), sampleCachedGeocode("sha256:old", "gen-1"))
	_ = c.Set(context.Background(), sampleCachedGeocode("sha256:new", "gen-2"))

	if err := c.InvalidateGeneration(context.Background(), "gen-2"); err != nil {
		t.Fatalf("InvalidateGeneration() error: %v", err)
	}

	if _, found, _ := c.Get(context.Background(), "sha256:old"); found {
		t.Errorf("expected stale-generation entry to be invalidated")
	}
	if _, found, _ := c.Get(context.Background(), "sha256:new"); !found {
		t.Errorf("expected current-generation entry to survive")
	}
}

func TestLocalCache_ExistsAndGetTTL(t *testing.T) {
	c := NewLocalCache(time.Hour)
	_ = c.Set(context.Background(), sampleCachedGeocode("sha256:ttl", "gen-1"))

	exists, err := c.Exists(context.Background(), "sha256:ttl")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if !exists {
		t.Errorf("expected Exists() to report true")
	}

	ttl, err := c.GetTTL(context.Background(), "sha256:ttl")
	if err != nil {
		t.Fatalf("GetTTL() error: %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("got GetTTL() %v, want (0, 1h]", ttl)
	}
}

func TestFingerprint_IsDeterministicAndDistinct(t *testing.T) {
	a := Fingerprint("東京都千代田区1-1-1")
	b := Fingerprint("東京都千代田区1-1-1")
	c := Fingerprint("大阪府大阪市北区")

	if a != b {
		t.Errorf("Fingerprint() not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Errorf("expected distinct inputs to hash differently")
	}
	t.Logf("fingerprint = %s", a)
}
