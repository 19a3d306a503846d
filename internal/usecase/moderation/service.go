package moderation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/placecache/internal/domain"
	"github.com/kailas-cloud/placecache/internal/domain/place"
)

// Service soft-deletes and restores places. Records are never hard-deleted.
type Service struct {
	records RecordStore
	geo     GeoIndex
	logger  *zap.Logger
}

// New creates a moderation service.
func New(records RecordStore, geoIndex GeoIndex, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{records: records, geo: geoIndex, logger: logger}
}

// SetActive toggles a record's active flag and adds or removes its geo entry.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (place.Record, error) {
	if err := place.ValidateID(id); err != nil {
		return place.Record{}, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, err.Error())
	}

	rec, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return place.Record{}, fmt.Errorf("place %s: %w", id, domain.ErrNotFound)
		}
		return place.Record{}, fmt.Errorf("read place %s: %w: %w", id, domain.ErrInternal, err)
	}

	if rec.Sync.IsActive != active {
		rec.Sync.IsActive = active
		if err := s.records.Put(ctx, rec); err != nil {
			return place.Record{}, fmt.Errorf("store place %s: %w: %w", id, domain.ErrInternal, err)
		}
		s.logger.Info("place active flag changed", zap.String("place_id", id), zap.Bool("active", active))
	}

	// Reconcile the index even when the flag is unchanged.
	if rec.Indexed() {
		err = s.geo.Upsert(ctx, rec.GeoEntry())
	} else {
		err = s.geo.Remove(ctx, id)
	}
	if err != nil {
		return place.Record{}, fmt.Errorf("index place %s: %w: %w", id, domain.ErrInternal, err)
	}
	return rec, nil
}
