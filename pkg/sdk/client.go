package placecache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	chiTransport "github.com/kailas-cloud/placecache/internal/transport/chi"
)

// Client is the placecache SDK entry point.
type Client struct {
	baseURL  string
	http     *http.Client
	token    string
	callerID string
	obs      *observer
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("placecache: base URL required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("placecache: invalid base URL: %w", err)
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}
	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     hc,
		token:    cfg.token,
		callerID: cfg.callerID,
		obs:      obs,
	}, nil
}

// Resolve returns a place, refreshing it upstream when needed.
func (c *Client) Resolve(ctx context.Context, req ResolveRequest) (resp ResolveResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("resolve", start, err) }()

	err = c.do(ctx, http.MethodPost, "/v1/places/resolve", nil, req, &resp)
	return resp, err
}

// Get resolves a place through the GET route. An empty language uses the
// server default.
func (c *Client) Get(ctx context.Context, placeID string, forceRefresh bool, language string) (resp ResolveResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("get", start, err) }()

	q := url.Values{}
	if forceRefresh {
		q.Set("forceRefresh", strconv.FormatBool(forceRefresh))
	}
	if language != "" {
		q.Set("language", language)
	}
	err = c.do(ctx, http.MethodGet, "/v1/places/"+url.PathEscape(placeID), q, nil, &resp)
	return resp, err
}

// Nearby runs a radius search.
func (c *Client) Nearby(ctx context.Context, req NearbyRequest) (resp NearbyResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("nearby", start, err) }()

	err = c.do(ctx, http.MethodPost, "/v1/places/nearby", nil, req, &resp)
	return resp, err
}

// SetActive hides or restores a place. Requires an admin caller.
func (c *Client) SetActive(ctx context.Context, placeID string, active bool) (rec Place, err error) {
	start := time.Now()
	defer func() { c.obs.observe("set_active", start, err) }()

	path := "/v1/admin/places/" + url.PathEscape(placeID) + "/active"
	err = c.do(ctx, http.MethodPut, path, nil, setActiveRequest{Active: &active}, &rec)
	return rec, err
}

// Health returns the service health. A degraded service answers 503 with a
// body; that case is returned without error.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	start := time.Now()
	var hs HealthStatus
	err := c.do(ctx, http.MethodGet, "/health", nil, nil, &hs)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && hs.Status != "" {
		err = nil
	}
	c.obs.observe("health", start, err)
	return hs, err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("placecache: encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return fmt.Errorf("placecache: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if c.callerID != "" {
		req.Header.Set(chiTransport.CallerHeader, c.callerID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("placecache: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("placecache: read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er chiTransport.ErrorResponse
		if json.Unmarshal(data, &er) == nil && er.Code != "" {
			apiErr.Code, apiErr.Message = string(er.Code), er.Message
		} else {
			// Health reports degraded with its own body shape.
			_ = json.Unmarshal(data, out)
			apiErr.Code, apiErr.Message = codeForStatus(resp.StatusCode), http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("placecache: decode response: %w", err)
		}
	}
	return nil
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_argument"
	case http.StatusUnauthorized:
		return "unauthenticated"
	case http.StatusForbidden:
		return "permission_denied"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusServiceUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}
