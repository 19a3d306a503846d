package moderation

import (
	"context"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
)

// RecordStore reads and writes place records.
type RecordStore interface {
	Get(ctx context.Context, id string) (place.Record, error)
	Put(ctx context.Context, rec place.Record) error
}

// GeoIndex keeps the index in step with the active flag.
type GeoIndex interface {
	Upsert(ctx context.Context, e geo.Entry) error
	Remove(ctx context.Context, placeID string) error
}
