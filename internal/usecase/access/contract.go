package access

import (
	"context"

	"github.com/kailas-cloud/placecache/internal/domain/view"
)

// EventSink appends view events to an analytics stream.
type EventSink interface {
	Append(ctx context.Context, e view.Event) error
}

// ViewCounter increments the view counter of a place record.
// It returns domain.ErrNotFound when the record does not exist.
type ViewCounter interface {
	IncrementViews(ctx context.Context, placeID string) error
}
