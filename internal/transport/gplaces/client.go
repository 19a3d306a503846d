package gplaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/placecache/internal/domain"
	"github.com/kailas-cloud/placecache/internal/domain/place"
	"github.com/kailas-cloud/placecache/internal/metrics"
)

// detailFields limits the response to what UpstreamFields carries.
var detailFields = strings.Join([]string{
	"place_id", "name", "formatted_address", "geometry/location",
	"rating", "user_ratings_total", "price_level", "types",
	"formatted_phone_number", "website", "opening_hours", "photos", "business_status",
}, ",")

const maxBodyBytes = 4 << 20

// Client calls the Place Details JSON API.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *rate.Limiter
	now     func() time.Time
	logger  *zap.Logger
}

// Config holds the provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64 // 0 = unlimited
	Burst      int
	HTTPClient *http.Client
	Logger     *zap.Logger
	Now        func() time.Time
}

// NewClient creates a Place Details client.
func NewClient(cfg *Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	lim := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		http:    hc,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		limiter: lim,
		now:     now,
		logger:  log,
	}
}

// FetchDetails performs exactly one request. Failures are mapped onto the
// domain upstream errors; an exhausted local limiter fails fast.
func (c *Client) FetchDetails(ctx context.Context, id, language string) (place.Payload, error) {
	if !c.limiter.Allow() {
		c.observe("rate_limited", 0)
		return place.Payload{}, fmt.Errorf("local quota: %w", domain.ErrRateLimited)
	}

	q := url.Values{}
	q.Set("place_id", id)
	q.Set("fields", detailFields)
	q.Set("key", c.apiKey)
	if language != "" {
		q.Set("language", language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/details/json?"+q.Encode(), nil)
	if err != nil {
		return place.Payload{}, fmt.Errorf("build request %s: %w: %w", id, domain.ErrTransient, redact(err))
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe("network_error", time.Since(start))
		err = redact(err)
		c.logger.Warn("place details request failed", zap.String("place_id", id), zap.Error(err))
		return place.Payload{}, fmt.Errorf("place details %s: %w: %w", id, domain.ErrTransient, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if err := statusError(resp.StatusCode); err != nil {
		c.observe(fmt.Sprintf("http_%d", resp.StatusCode), time.Since(start))
		return place.Payload{}, fmt.Errorf("place details %s: http %d: %w", id, resp.StatusCode, err)
	}

	var body detailsResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		c.observe("decode_error", time.Since(start))
		return place.Payload{}, fmt.Errorf("decode place details %s: %w: %w", id, domain.ErrTransient, err)
	}

	c.observe(strings.ToLower(body.Status), time.Since(start))
	if err := apiStatusError(body.Status); err != nil {
		if body.ErrorMessage != "" {
			return place.Payload{}, fmt.Errorf("place details %s: %s: %s: %w", id, body.Status, body.ErrorMessage, err)
		}
		return place.Payload{}, fmt.Errorf("place details %s: %s: %w", id, body.Status, err)
	}

	return place.Payload{
		ID:        id,
		Upstream:  body.Result.toUpstream(),
		FetchedAt: c.now().UTC(),
		Language:  language,
	}, nil
}

func (c *Client) observe(status string, d time.Duration) {
	metrics.UpstreamRequestsTotal.WithLabelValues(status).Inc()
	if d > 0 {
		metrics.UpstreamRequestDuration.WithLabelValues(status).Observe(d.Seconds())
	}
}

// statusError maps non-2xx HTTP codes; nil means the body carries the status.
func statusError(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case code == http.StatusUnauthorized, code == http.StatusForbidden:
		return domain.ErrAccessDenied
	case code == http.StatusNotFound:
		return domain.ErrUpstreamNotFound
	default:
		return domain.ErrTransient
	}
}

// apiStatusError maps the provider's status field.
func apiStatusError(status string) error {
	switch status {
	case "OK":
		return nil
	case "NOT_FOUND", "ZERO_RESULTS":
		return domain.ErrUpstreamNotFound
	case "OVER_QUERY_LIMIT":
		return domain.ErrRateLimited
	case "REQUEST_DENIED":
		return domain.ErrAccessDenied
	default:
		return domain.ErrTransient
	}
}

// redact strips the request URL, which carries the API key, from transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
