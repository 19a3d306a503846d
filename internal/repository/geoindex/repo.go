package geoindex

import (
	"context"
	"fmt"
	"math"

	"github.com/kailas-cloud/placecache/internal/db"
	"github.com/kailas-cloud/placecache/internal/domain/geo"
)

// store is the consumer interface for the geo index (ISP).
type store interface {
	GeoAdd(ctx context.Context, key, member string, lon, lat float64) error
	GeoRemove(ctx context.Context, key, member string) error
	GeoSearch(ctx context.Context, key string, lon, lat, radiusKm float64, count int) ([]db.GeoHit, error)
}

// Repo keeps active places in a single Redis GEO set at {prefix}geo.
// Members are place ids; the set's geohash buckets answer radius queries.
type Repo struct {
	store store
	key   string
}

// New creates a geo index repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, key: keyPrefix + "geo"}
}

// maxLat is the latitude band GEOADD accepts (EPSG:3857).
const maxLat = 85.05112878

// Upsert adds or moves a place entry. Points beyond the GEO latitude band
// cannot be stored; any previous entry for the place is dropped instead.
func (r *Repo) Upsert(ctx context.Context, e geo.Entry) error {
	if err := e.Point.Validate(); err != nil {
		return fmt.Errorf("geo entry %s: %w", e.PlaceID, err)
	}
	if math.Abs(e.Point.Lat) > maxLat {
		return r.Remove(ctx, e.PlaceID)
	}
	if err := r.store.GeoAdd(ctx, r.key, e.PlaceID, e.Point.Lng, e.Point.Lat); err != nil {
		return fmt.Errorf("geoadd %s: %w", e.PlaceID, err)
	}
	return nil
}

// Remove drops a place entry. Removing an absent entry is not an error.
func (r *Repo) Remove(ctx context.Context, placeID string) error {
	if err := r.store.GeoRemove(ctx, r.key, placeID); err != nil {
		return fmt.Errorf("geo remove %s: %w", placeID, err)
	}
	return nil
}

// FindWithinRadius returns up to limit entries within radiusKm of center, nearest first.
func (r *Repo) FindWithinRadius(
	ctx context.Context, center geo.Point, radiusKm float64, limit int,
) ([]geo.Hit, error) {
	found, err := r.store.GeoSearch(ctx, r.key, center.Lng, center.Lat, radiusKm, limit)
	if err != nil {
		return nil, fmt.Errorf("geosearch %g km: %w", radiusKm, err)
	}
	hits := make([]geo.Hit, len(found))
	for i, f := range found {
		hits[i] = geo.Hit{PlaceID: f.Member, DistanceKm: f.DistKm}
	}
	return hits, nil
}
