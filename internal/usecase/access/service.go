package access

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/placecache/internal/domain"
	"github.com/kailas-cloud/placecache/internal/domain/view"
)

// DefaultTimeout bounds one detached recording.
const DefaultTimeout = 5 * time.Second

// ErrClosed is sent for recordings requested after Close.
var ErrClosed = errors.New("access recorder closed")

// Service records place views best-effort on detached goroutines.
// Failures are logged and counted, never returned to the request path.
type Service struct {
	sink    EventSink
	counter ViewCounter
	timeout time.Duration
	now     func() time.Time
	results *prometheus.CounterVec
	logger  *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a recorder. counter and results can be nil.
func New(sink EventSink, counter ViewCounter, timeout time.Duration, results *prometheus.CounterVec, logger *zap.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sink:    sink,
		counter: counter,
		timeout: timeout,
		now:     time.Now,
		results: results,
		logger:  logger,
	}
}

// RecordView appends a view event and bumps the place's view counter in the
// background. The work outlives ctx cancellation but not the recorder timeout.
// The returned channel receives the outcome once and is then closed.
func (s *Service) RecordView(ctx context.Context, callerID, placeID string) <-chan error {
	errc := make(chan error, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		errc <- ErrClosed
		close(errc)
		return errc
	}
	s.wg.Add(1)
	s.mu.Unlock()

	ev := view.NewEvent(callerID, placeID, s.now())
	detached := context.WithoutCancel(ctx)

	go func() {
		defer s.wg.Done()
		defer close(errc)

		rctx, cancel := context.WithTimeout(detached, s.timeout)
		defer cancel()

		err := s.record(rctx, ev)
		if err != nil {
			s.inc("error")
			s.logger.Warn("record view failed",
				zap.String("event_id", ev.ID),
				zap.String("place_id", placeID),
				zap.String("caller_id", callerID),
				zap.Error(err),
			)
		} else {
			s.inc("ok")
		}
		errc <- err
	}()

	return errc
}

func (s *Service) record(ctx context.Context, ev view.Event) error {
	var errs []error
	if err := s.sink.Append(ctx, ev); err != nil {
		errs = append(errs, fmt.Errorf("append view event: %w", err))
	}
	if s.counter != nil {
		// Views of unknown places are still appended but have no counter.
		if err := s.counter.IncrementViews(ctx, ev.PlaceID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			errs = append(errs, fmt.Errorf("increment views: %w", err))
		}
	}
	return errors.Join(errs...)
}

// Close stops accepting recordings and waits for in-flight ones until ctx is done.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for view recordings: %w", ctx.Err())
	}
}

func (s *Service) inc(result string) {
	if s.results != nil {
		s.results.WithLabelValues(result).Inc()
	}
}
