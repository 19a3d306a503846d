package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	JSONStore
	KVStore
	GeoStore
	StreamStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// JSONStore provides JSON document operations.
type JSONStore interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	// JSONGetMulti fetches several documents in one round-trip.
	// Missing keys yield a nil entry at the same position.
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	JSONNumIncrBy(ctx context.Context, key, path string, val int64) error
	Del(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple counter operations.
type KVStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// GeoHit is a single member returned by a radius search.
type GeoHit struct {
	Member    string
	DistKm    float64
	Longitude float64
	Latitude  float64
}

// GeoStore provides sorted-set backed geospatial operations.
type GeoStore interface {
	GeoAdd(ctx context.Context, key, member string, lon, lat float64) error
	GeoRemove(ctx context.Context, key, member string) error
	// GeoSearch returns members within radiusKm of (lon, lat), nearest first.
	// count <= 0 means no limit.
	GeoSearch(ctx context.Context, key string, lon, lat, radiusKm float64, count int) ([]GeoHit, error)
}

// StreamStore appends entries to capped append-only streams.
type StreamStore interface {
	XAdd(ctx context.Context, key string, maxLen int64, fields map[string]string) error
}
