package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placecache/internal/domain"
	"github.com/kailas-cloud/placecache/internal/domain/place"
	"github.com/kailas-cloud/placecache/internal/logger"
)

// DefaultStaleAfter is the staleness window for cached records.
const DefaultStaleAfter = 7 * 24 * time.Hour

// State is the terminal state of a resolution.
type State string

// Terminal states.
const (
	// Fresh: served from cache without contacting upstream.
	Fresh State = "fresh"
	// Refreshed: fetched from upstream, merged and persisted.
	Refreshed State = "refreshed"
	// Degraded: upstream failed, a cached copy was served instead.
	Degraded State = "degraded"
)

// Request is a resolution request.
type Request struct {
	PlaceID      string
	ForceRefresh bool
	Language     string
	CallerID     string
}

// Result is a resolved place.
type Result struct {
	Record    place.Record
	State     State
	FromCache bool
	Degraded  bool
	// Language is the language of the served upstream fields.
	Language string
}

// Option configures the Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithOutcomeCounter records resolutions by terminal state (label "outcome").
func WithOutcomeCounter(c *prometheus.CounterVec) Option {
	return func(s *Service) { s.outcomes = c }
}

// Service resolves place ids against the cache and the upstream provider.
type Service struct {
	records         RecordStore
	geo             GeoIndex
	upstream        Upstream
	recorder        ViewRecorder
	staleAfter      time.Duration
	defaultLanguage string
	now             func() time.Time
	outcomes        *prometheus.CounterVec
	logger          *zap.Logger
}

// New creates a resolver. recorder can be nil.
func New(
	records RecordStore,
	geoIndex GeoIndex,
	upstream Upstream,
	recorder ViewRecorder,
	staleAfter time.Duration,
	defaultLanguage string,
	log *zap.Logger,
	opts ...Option,
) *Service {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		records:         records,
		geo:             geoIndex,
		upstream:        upstream,
		recorder:        recorder,
		staleAfter:      staleAfter,
		defaultLanguage: defaultLanguage,
		now:             time.Now,
		logger:          log,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Resolve returns the place record for req.PlaceID.
//
// A fresh cached record is served unless ForceRefresh is set. Otherwise the
// record is fetched upstream, merged over the cached copy and persisted. When
// the fetch fails, a cached copy (even stale) is served as degraded. A view is
// recorded asynchronously whatever the outcome.
func (s *Service) Resolve(ctx context.Context, req Request) (Result, error) {
	if err := place.ValidateID(req.PlaceID); err != nil {
		return Result{}, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, err.Error())
	}
	if req.Language == "" {
		req.Language = s.defaultLanguage
	}
	defer s.recordView(ctx, req)

	res, err := s.resolve(ctx, req)
	if err != nil {
		s.incOutcome("error")
		return Result{}, err
	}
	s.incOutcome(string(res.State))
	return res, nil
}

func (s *Service) resolve(ctx context.Context, req Request) (Result, error) {
	existing, err := s.lookup(ctx, req.PlaceID)
	if err != nil {
		return Result{}, err
	}

	if !req.ForceRefresh && existing.IsFresh(s.now(), s.staleAfter) {
		return cached(*existing, Fresh), nil
	}

	payload, err := s.upstream.FetchDetails(ctx, req.PlaceID, req.Language)
	if err != nil {
		return s.fallback(ctx, req, existing, err)
	}
	if payload.ID == "" {
		payload.ID = req.PlaceID
	}
	if payload.Language == "" {
		payload.Language = req.Language
	}

	merged := place.Merge(existing, payload)
	if existing == nil {
		merged.Platform.CreatedBy = req.CallerID
	}

	if err := s.persist(ctx, merged); err != nil {
		return Result{}, err
	}

	return Result{
		Record:   merged,
		State:    Refreshed,
		Language: merged.Sync.Language,
	}, nil
}

// lookup returns nil when the record does not exist.
func (s *Service) lookup(ctx context.Context, id string) (*place.Record, error) {
	rec, err := s.records.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("read place %s: %w: %w", id, domain.ErrInternal, err)
	}
	return &rec, nil
}

func (s *Service) fallback(ctx context.Context, req Request, existing *place.Record, fetchErr error) (Result, error) {
	log := logger.FromContext(ctx, s.logger).With(
		zap.String("place_id", req.PlaceID),
		zap.Error(fetchErr),
	)
	if existing != nil {
		log.Warn("upstream fetch failed, serving cached place")
		return cached(*existing, Degraded), nil
	}
	if errors.Is(fetchErr, domain.ErrUpstreamNotFound) {
		return Result{}, fmt.Errorf("place %s: %w", req.PlaceID, domain.ErrNotFound)
	}
	log.Warn("upstream fetch failed, no cached place")
	return Result{}, fmt.Errorf("place %s: %w: %w", req.PlaceID, domain.ErrUnavailable, fetchErr)
}

// persist writes the derived geo entry before the record. A failed record
// write leaves at most an orphan entry, which GetMany drops; a failed index
// write leaves the record stale so the next resolution retries both.
func (s *Service) persist(ctx context.Context, rec place.Record) error {
	var err error
	if rec.Indexed() {
		err = s.geo.Upsert(ctx, rec.GeoEntry())
	} else {
		err = s.geo.Remove(ctx, rec.ID)
	}
	if err != nil {
		return fmt.Errorf("index place %s: %w: %w", rec.ID, domain.ErrInternal, err)
	}
	if err := s.records.Put(ctx, rec); err != nil {
		return fmt.Errorf("store place %s: %w: %w", rec.ID, domain.ErrInternal, err)
	}
	return nil
}

func (s *Service) recordView(ctx context.Context, req Request) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.RecordView(ctx, req.CallerID, req.PlaceID)
}

func (s *Service) incOutcome(outcome string) {
	if s.outcomes != nil {
		s.outcomes.WithLabelValues(outcome).Inc()
	}
}

func cached(rec place.Record, state State) Result {
	return Result{
		Record:    rec,
		State:     state,
		FromCache: true,
		Degraded:  state == Degraded,
		Language:  rec.Sync.Language,
	}
}
