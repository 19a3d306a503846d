package nearby

import (
	"context"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
)

// GeoIndex answers radius queries, nearest first, at most limit hits.
type GeoIndex interface {
	FindWithinRadius(ctx context.Context, center geo.Point, radiusKm float64, limit int) ([]geo.Hit, error)
}

// RecordStore batch-loads records; ids missing from the store are absent from the map.
type RecordStore interface {
	GetMany(ctx context.Context, ids []string) (map[string]place.Record, error)
}
