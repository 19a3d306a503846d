package viewevents

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/placecache/internal/domain/view"
)

const dayLayout = "20060102"

// store is the consumer interface for view events (ISP).
type store interface {
	XAdd(ctx context.Context, key string, maxLen int64, fields map[string]string) error
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store appends view events to a capped Redis stream and keeps per-place
// daily view counters ({prefix}views:{placeId}:daily:{yyyymmdd}).
type Store struct {
	store    store
	stream   string
	prefix   string
	maxLen   int64
	dailyTTL time.Duration
}

// New creates a view event store. dailyTTL is the TTL for daily counter
// keys (recommended: 48h).
func New(s store, keyPrefix, stream string, maxLen int64, dailyTTL time.Duration) *Store {
	return &Store{
		store:    s,
		stream:   keyPrefix + stream,
		prefix:   keyPrefix + "views:",
		maxLen:   maxLen,
		dailyTTL: dailyTTL,
	}
}

// Append writes the event to the stream and bumps the place's daily counter.
func (s *Store) Append(ctx context.Context, e view.Event) error {
	if err := s.store.XAdd(ctx, s.stream, s.maxLen, e.Fields()); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}

	key := s.DailyKey(e.PlaceID, e.At)
	if err := s.store.IncrBy(ctx, key, 1); err != nil {
		return fmt.Errorf("views INCRBY %s: %w", key, err)
	}
	// Set TTL only if the key has no expiry yet (NX, not reset on repeat).
	if err := s.store.Expire(ctx, key, s.dailyTTL, true); err != nil {
		return fmt.Errorf("views EXPIRE %s: %w", key, err)
	}
	return nil
}

// DailyKey returns the counter key for placeID on at's UTC day.
func (s *Store) DailyKey(placeID string, at time.Time) string {
	return s.prefix + placeID + ":daily:" + at.UTC().Format(dayLayout)
}
