package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/models"
	"github.com/jageocoder/abr-geocoder/app/requests"
	"github.com/jageocoder/abr-geocoder/app/responses"
	"github.com/jageocoder/abr-geocoder/app/services"
	"github.com/jageocoder/abr-geocoder/internal/format"
	"github.com/jageocoder/abr-geocoder/internal/search"
)

// AddressController serves the lookup API named in §6: GET /v1/geocode,
// GET /v1/suggest, GET /healthz — a synchronous single-address lookup and
// typeahead suggestion endpoint, not an async batch-job API (bulk
// geocoding is the `geocode` CLI subcommand's job, not the HTTP surface's).
type AddressController struct {
	geocodeService *services.GeocodeService
	cache          services.IGeocodeCache
	searcher       *search.GazetteerSearcher
	dataGeneration string
	startTime      time.Time
	logger         *zap.Logger
}

// NewAddressController builds an AddressController. cache and searcher may
// both be nil: a nil cache disables result caching, a nil searcher makes
// /v1/suggest respond 503 rather than panic.
func NewAddressController(geocodeService *services.GeocodeService, cache services.IGeocodeCache, searcher *search.GazetteerSearcher, dataGeneration string, logger *zap.Logger) *AddressController {
	return &AddressController{
		geocodeService: geocodeService,
		cache:          cache,
		searcher:       searcher,
		dataGeneration: dataGeneration,
		startTime:      time.Now(),
		logger:         logger,
	}
}

// Geocode handles GET /v1/geocode?q=<address>.
func (ac *AddressController) Geocode(c *gin.Context) {
	var req requests.GeocodeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	start := time.Now()
	fingerprint := services.Fingerprint(req.Address)

	if req.UseCache && ac.cache != nil {
		if cached, found, err := ac.cache.Get(c.Request.Context(), fingerprint); err == nil && found {
			c.JSON(http.StatusOK, responses.GeocodeResponse{
				DataGeneration:   cached.DataGeneration,
				Result:           cached.Record,
				ProcessingTimeMs: time.Since(start).Milliseconds(),
				CacheHit:         true,
			})
			return
		}
	}

	result, err := ac.geocodeService.Geocode(c.Request.Context(), req.Address)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "GEOCODE_ERROR",
			Message:   err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	rec := format.NewRecord(result)

	if req.UseCache && ac.cache != nil {
		entry := models.NewCachedGeocode(fingerprint, req.Address, rec, ac.dataGeneration)
		if err := ac.cache.Set(c.Request.Context(), entry); err != nil {
			ac.logger.Warn("cache set failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, responses.GeocodeResponse{
		DataGeneration:   ac.dataGeneration,
		Result:           rec,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
		CacheHit:         false,
	})
}

// Suggest handles GET /v1/suggest?q=<prefix>.
func (ac *AddressController) Suggest(c *gin.Context) {
	var req requests.SuggestRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:     "INVALID_REQUEST",
			Message:   err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}
	if ac.searcher == nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:     "SUGGEST_UNAVAILABLE",
			Message:   "suggest index is not configured",
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	results, err := ac.searcher.Suggest(c.Request.Context(), req.Query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:     "SUGGEST_ERROR",
			Message:   err.Error(),
			Timestamp: time.Now().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SuggestResponse{Query: req.Query, Results: results})
}

// HealthCheck handles GET /healthz.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	uptime := time.Since(ac.startTime)

	svcStatus := map[string]string{
		"geocoder": "healthy",
	}
	if ac.cache != nil {
		svcStatus["cache"] = "healthy"
	}
	if ac.searcher != nil {
		svcStatus["suggest"] = "healthy"
	}

	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    uptime.String(),
		Version:   ac.dataGeneration,
		Services:  svcStatus,
	})
}
