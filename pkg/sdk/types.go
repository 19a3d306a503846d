package placecache

import (
	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
	chiTransport "github.com/kailas-cloud/placecache/internal/transport/chi"
)

// Domain types shared with the server.
type (
	Place          = place.Record
	Point          = geo.Point
	Bounds         = geo.Bounds
	UpstreamFields = place.UpstreamFields
	PlatformFields = place.PlatformFields
	SyncMeta       = place.SyncMeta
)

// Wire types shared with the server.
type (
	ResolveRequest   = chiTransport.ResolveRequest
	ResolveResponse  = chiTransport.ResolveResponse
	ResolveMeta      = chiTransport.ResolveMeta
	NearbyRequest    = chiTransport.NearbyRequest
	NearbyFilters    = chiTransport.NearbyFilters
	Pagination       = chiTransport.Pagination
	NearbyResponse   = chiTransport.NearbyResponse
	NearbyPlace      = chiTransport.NearbyPlace
	AppliedFilters   = chiTransport.AppliedFilters
	HealthStatus     = chiTransport.HealthResponse
	setActiveRequest = chiTransport.SetActiveRequest
)
