package responses

import (
	"github.com/jageocoder/abr-geocoder/internal/format"
	"github.com/jageocoder/abr-geocoder/internal/search"
)

// GeocodeResponse is the response body for GET /v1/geocode, adapted from
// ParseAddressResponse: Results narrows from a Vietnamese AddressResult
// slice to a single resolved Record, since one query yields one record.
type GeocodeResponse struct {
	DataGeneration   string        `json:"data_generation"`
	Result           format.Record `json:"result"`
	ProcessingTimeMs int64         `json:"processing_time_ms"`
	CacheHit         bool          `json:"cache_hit"`
}

// SuggestResponse is the response body for GET /v1/suggest.
type SuggestResponse struct {
	Query   string              `json:"query"`
	Results []search.Suggestion `json:"results"`
}

// ErrorResponse is the envelope for a failed request.
type ErrorResponse struct {
	Error     string      `json:"error"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	Timestamp string      `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// SuccessResponse is the generic envelope for a successful request.
type SuccessResponse struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// HealthCheckResponse is the body for GET /healthz.
type HealthCheckResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    string            `json:"uptime"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}
