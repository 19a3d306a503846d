package chi

import (
	"time"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
)

// ErrorCode is a stable, caller-facing error code.
type ErrorCode string

// Error codes.
const (
	CodeInvalidArgument  ErrorCode = "invalid_argument"
	CodeUnauthenticated  ErrorCode = "unauthenticated"
	CodePermissionDenied ErrorCode = "permission_denied"
	CodeNotFound         ErrorCode = "not_found"
	CodeUnavailable      ErrorCode = "unavailable"
	CodeInternal         ErrorCode = "internal"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ResolveRequest is the body of POST /v1/places/resolve.
type ResolveRequest struct {
	PlaceID      string `json:"placeId"`
	ForceRefresh bool   `json:"forceRefresh"`
	Language     string `json:"language,omitempty"`
}

// ResolveMeta describes how the place was served.
type ResolveMeta struct {
	FromCache  bool      `json:"fromCache"`
	Degraded   bool      `json:"degraded"`
	LastUpdate time.Time `json:"lastUpdate"`
	Language   string    `json:"language"`
}

// ResolveResponse is the response of both resolve routes.
type ResolveResponse struct {
	Place     place.Record `json:"place"`
	FromCache bool         `json:"fromCache"`
	Meta      ResolveMeta  `json:"meta"`
}

// NearbyFilters is the filters object of a nearby request.
type NearbyFilters struct {
	Category       string   `json:"category,omitempty"`
	MinRating      float64  `json:"minRating,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	IncludeReviews bool     `json:"includeReviews,omitempty"`
	SortBy         string   `json:"sortBy,omitempty"`
	Active         *bool    `json:"active,omitempty"`
}

// Pagination is an offset page window.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// NearbyRequest is the body of POST /v1/places/nearby.
type NearbyRequest struct {
	Center     *geo.Point     `json:"center"`
	RadiusKm   float64        `json:"radiusKm,omitempty"`
	Filters    *NearbyFilters `json:"filters,omitempty"`
	Pagination *Pagination    `json:"pagination,omitempty"`
	Bounds     *geo.Bounds    `json:"bounds,omitempty"`
}

// NearbyPlace is one search hit.
type NearbyPlace struct {
	Place      place.Record `json:"place"`
	DistanceKm float64      `json:"distanceKm"`
}

// AppliedFilters echoes the normalized filters the search ran with.
type AppliedFilters struct {
	Category       string      `json:"category,omitempty"`
	MinRating      float64     `json:"minRating,omitempty"`
	Tags           []string    `json:"tags,omitempty"`
	Bounds         *geo.Bounds `json:"bounds,omitempty"`
	IncludeReviews bool        `json:"includeReviews"`
	SortBy         string      `json:"sortBy"`
	Active         bool        `json:"active"`
	Limit          int         `json:"limit"`
	Offset         int         `json:"offset"`
}

// NearbyResponse is the response of POST /v1/places/nearby.
type NearbyResponse struct {
	Places         []NearbyPlace  `json:"places"`
	Total          int            `json:"total"`
	HasMore        bool           `json:"hasMore"`
	Center         geo.Point      `json:"center"`
	RadiusKm       float64        `json:"radiusKm"`
	AppliedFilters AppliedFilters `json:"appliedFilters"`
}

// SetActiveRequest is the body of PUT /v1/admin/places/{placeId}/active.
type SetActiveRequest struct {
	Active *bool `json:"active"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
