package nearby

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/placecache/internal/domain"
	"github.com/kailas-cloud/placecache/internal/domain/search/request"
	"github.com/kailas-cloud/placecache/internal/domain/search/result"
	"github.com/kailas-cloud/placecache/internal/domain/search/sortkey"
)

// radiusToleranceKm absorbs floating point noise at the radius edge.
const radiusToleranceKm = 1e-9

// Config tunes candidate over-fetching.
type Config struct {
	OverFetchFactor int
	MaxCandidates   int
}

// Service runs radius searches with in-memory post-filters.
// It never contacts the upstream provider.
type Service struct {
	geo        GeoIndex
	records    RecordStore
	cfg        Config
	duration   prometheus.Observer
	candidates prometheus.Observer
}

// New creates a nearby search service. duration and candidates can be nil.
func New(geoIndex GeoIndex, records RecordStore, cfg Config, duration, candidates prometheus.Observer) *Service {
	if cfg.OverFetchFactor <= 0 {
		cfg.OverFetchFactor = 3
	}
	if cfg.MaxCandidates <= 0 {
		cfg.MaxCandidates = 500
	}
	return &Service{
		geo:        geoIndex,
		records:    records,
		cfg:        cfg,
		duration:   duration,
		candidates: candidates,
	}
}

// Search returns one page of places within q's radius that pass q's filters.
//
// Offset skips filtered results in index order before the page is collected,
// so pages are not isolated from index writes between requests.
func (s *Service) Search(ctx context.Context, q *request.Nearby) (result.Page, error) {
	start := time.Now()
	defer func() {
		if s.duration != nil {
			s.duration.Observe(time.Since(start).Seconds())
		}
	}()

	n := q.Candidates(s.cfg.OverFetchFactor, s.cfg.MaxCandidates)
	hits, err := s.geo.FindWithinRadius(ctx, q.Center(), q.RadiusKm(), n)
	if err != nil {
		return result.Page{}, fmt.Errorf("geo radius query: %w: %w", domain.ErrInternal, err)
	}
	if s.candidates != nil {
		s.candidates.Observe(float64(len(hits)))
	}
	if len(hits) == 0 {
		return result.Page{Results: []result.Result{}}, nil
	}

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.PlaceID
	}
	recs, err := s.records.GetMany(ctx, ids)
	if err != nil {
		return result.Page{}, fmt.Errorf("load %d places: %w: %w", len(ids), domain.ErrInternal, err)
	}

	f := q.Filters()
	filtered := make([]result.Result, 0, len(hits))
	for _, h := range hits {
		rec, ok := recs[h.PlaceID]
		if !ok {
			continue
		}
		d := q.Center().DistanceKm(rec.Upstream.Location)
		if d > q.RadiusKm()+radiusToleranceKm {
			continue
		}
		if !f.Match(&rec) {
			continue
		}
		filtered = append(filtered, result.New(rec, d))
	}

	page := paginate(filtered, q.Offset(), q.Limit())
	sortPage(page, f.SortBy())

	return result.Page{
		Results: page,
		Total:   len(filtered),
		HasMore: len(page) == q.Limit(),
	}, nil
}

func paginate(rs []result.Result, offset, limit int) []result.Result {
	if offset >= len(rs) {
		return []result.Result{}
	}
	end := min(offset+limit, len(rs))
	return slices.Clone(rs[offset:end])
}

func sortPage(rs []result.Result, key sortkey.Key) {
	byDistance := func(a, b result.Result) int {
		return cmp.Or(
			cmp.Compare(a.DistanceKm(), b.DistanceKm()),
			cmp.Compare(a.Record().ID, b.Record().ID),
		)
	}
	switch key {
	case sortkey.Rating:
		slices.SortStableFunc(rs, func(a, b result.Result) int {
			if c := cmp.Compare(b.Record().Upstream.Rating, a.Record().Upstream.Rating); c != 0 {
				return c
			}
			return byDistance(a, b)
		})
	case sortkey.Newest:
		slices.SortStableFunc(rs, func(a, b result.Result) int {
			if c := b.Record().Platform.CreatedAt.Compare(a.Record().Platform.CreatedAt); c != 0 {
				return c
			}
			return byDistance(a, b)
		})
	default:
		slices.SortStableFunc(rs, byDistance)
	}
}
