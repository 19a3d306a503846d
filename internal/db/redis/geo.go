package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/placecache/internal/db"
)

// GeoAdd adds or moves a member in a geo sorted set.
func (s *Store) GeoAdd(ctx context.Context, key, member string, lon, lat float64) error {
	cmd := s.b().Arbitrary("GEOADD").Keys(key).
		Args(formatCoord(lon), formatCoord(lat), member).
		Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpGeoAdd, Err: err}
	}
	return nil
}

// GeoRemove removes a member from a geo sorted set. Missing members are not an error.
func (s *Store) GeoRemove(ctx context.Context, key, member string) error {
	cmd := s.b().Zrem().Key(key).Member(member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// GeoSearch runs GEOSEARCH FROMLONLAT BYRADIUS in kilometers, nearest first.
func (s *Store) GeoSearch(
	ctx context.Context, key string, lon, lat, radiusKm float64, count int,
) ([]db.GeoHit, error) {
	args := []string{
		"FROMLONLAT", formatCoord(lon), formatCoord(lat),
		"BYRADIUS", strconv.FormatFloat(radiusKm, 'f', -1, 64), "KM",
		"ASC",
	}
	if count > 0 {
		args = append(args, "COUNT", strconv.Itoa(count))
	}
	args = append(args, "WITHCOORD", "WITHDIST")

	cmd := s.b().Arbitrary("GEOSEARCH").Keys(key).Args(args...).Build()
	locs, err := s.do(ctx, cmd).AsGeosearch()
	if err != nil {
		return nil, &db.Error{Op: db.OpGeoSearch, Err: err}
	}

	hits := make([]db.GeoHit, len(locs))
	for i, l := range locs {
		hits[i] = db.GeoHit{
			Member:    l.Name,
			DistKm:    l.Dist,
			Longitude: l.Longitude,
			Latitude:  l.Latitude,
		}
	}
	return hits, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
