package resolve

import (
	"context"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
)

// RecordStore is the durable place record store.
// Get returns domain.ErrNotFound when the record does not exist.
type RecordStore interface {
	Get(ctx context.Context, id string) (place.Record, error)
	Put(ctx context.Context, rec place.Record) error
}

// GeoIndex maintains the derived geo entries of active records.
type GeoIndex interface {
	Upsert(ctx context.Context, e geo.Entry) error
	Remove(ctx context.Context, placeID string) error
}

// Upstream fetches place details from the external provider.
type Upstream interface {
	FetchDetails(ctx context.Context, id, language string) (place.Payload, error)
}

// ViewRecorder records views best-effort. The returned channel may be ignored.
type ViewRecorder interface {
	RecordView(ctx context.Context, callerID, placeID string) <-chan error
}
