package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/responses"
	"github.com/jageocoder/abr-geocoder/app/services"
	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestController(cache services.IGeocodeCache) *AddressController {
	tries := store.NewTries()
	tries.Prefectures.Append("東京都", addr.PrefectureInfo{PrefKey: "13", LGCode: "130001", Pref: "東京都"})

	gs := services.NewGeocodeService(tries, zap.NewNop())
	return NewAddressController(gs, cache, nil, "gen-test", zap.NewNop())
}

func TestAddressController_Geocode_MissingQueryIsBadRequest(t *testing.T) {
	ac := newTestController(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/geocode", nil)

	ac.Geocode(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusBadRequest)
	}
}

func TestAddressController_Geocode_ResolvesAndCaches(t *testing.T) {
	cache := services.NewLocalCache(time.Minute)
	ac := newTestController(cache)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/geocode?q=%E6%9D%B1%E4%BA%AC%E9%83%BD&use_cache=true", nil)

	ac.Geocode(c)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp responses.GeocodeResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.CacheHit {
		t.Errorf("expected first lookup to be a cache miss")
	}

	fp := services.Fingerprint("東京都")
	if _, found, err := cache.Get(context.Background(), fp); err != nil || !found {
		t.Errorf("expected result to be written through to the cache, found=%v err=%v", found, err)
	}
}

func TestAddressController_Suggest_UnconfiguredSearcherIsUnavailable(t *testing.T) {
	ac := newTestController(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/v1/suggest?q=%E6%9D%B1%E4%BA%AC", nil)

	ac.Suggest(c)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusServiceUnavailable)
	}
}

func TestAddressController_HealthCheck_ReportsStatus(t *testing.T) {
	ac := newTestController(nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/healthz", nil)

	ac.HealthCheck(c)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d", w.Code, http.StatusOK)
	}

	var resp responses.HealthCheckResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("got Status %q, want healthy", resp.Status)
	}
	if resp.Services["geocoder"] != "healthy" {
		t.Errorf("expected geocoder service to report healthy")
	}
}
