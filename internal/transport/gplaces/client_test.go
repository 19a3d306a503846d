package gplaces

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/kailas-cloud/placecache/internal/domain"
	"github.com/kailas-cloud/placecache/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterPlaceMetrics()
	os.Exit(m.Run())
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestClient(t *testing.T, h http.HandlerFunc, ratePerSec float64) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(&Config{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/",
		Timeout:    time.Second,
		RatePerSec: ratePerSec,
		Burst:      1,
		Now:        func() time.Time { return fixedNow },
	})
}

const okBody = `{
	"status": "OK",
	"result": {
		"place_id": "ChIJabc",
		"name": "Café Azul",
		"formatted_address": "Rua A, 1",
		"geometry": {"location": {"lat": -23.5, "lng": -46.6}},
		"rating": 4.6,
		"user_ratings_total": 120,
		"price_level": 2,
		"types": ["cafe", "food"],
		"website": "https://cafeazul.example",
		"opening_hours": {
			"open_now": true,
			"weekday_text": ["Monday: 8:00 AM – 6:00 PM"],
			"periods": [{"open": {"day": 1, "time": "0800"}, "close": {"day": 1, "time": "1800"}}]
		},
		"photos": [{"photo_reference": "ref1", "width": 800, "height": 600, "html_attributions": ["a"]}],
		"business_status": "OPERATIONAL"
	}
}`

func TestFetchDetails_OK(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/details/json" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("place_id") != "ChIJabc" || q.Get("key") != "test-key" || q.Get("language") != "pt-BR" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		if q.Get("fields") == "" {
			t.Error("fields not set")
		}
		_, _ = io.WriteString(w, okBody)
	}, 0)

	p, err := c.FetchDetails(context.Background(), "ChIJabc", "pt-BR")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != "ChIJabc" || p.Language != "pt-BR" || !p.FetchedAt.Equal(fixedNow) {
		t.Errorf("unexpected payload meta: %+v", p)
	}
	u := p.Upstream
	if u.Name != "Café Azul" || u.RatingCount != 120 || u.Location.Lat != -23.5 || len(u.Types) != 2 {
		t.Errorf("unexpected upstream fields: %+v", u)
	}
	if u.OpeningHours == nil || len(u.OpeningHours.Periods) != 1 || u.OpeningHours.Periods[0].Close == nil {
		t.Errorf("opening hours not mapped: %+v", u.OpeningHours)
	}
	if len(u.Photos) != 1 || u.Photos[0].Reference != "ref1" {
		t.Errorf("photos not mapped: %+v", u.Photos)
	}
}

func TestFetchDetails_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"not found", 200, `{"status":"NOT_FOUND"}`, domain.ErrUpstreamNotFound},
		{"zero results", 200, `{"status":"ZERO_RESULTS"}`, domain.ErrUpstreamNotFound},
		{"over quota", 200, `{"status":"OVER_QUERY_LIMIT"}`, domain.ErrRateLimited},
		{"denied", 200, `{"status":"REQUEST_DENIED","error_message":"bad key"}`, domain.ErrAccessDenied},
		{"invalid request", 200, `{"status":"INVALID_REQUEST"}`, domain.ErrTransient},
		{"unknown error", 200, `{"status":"UNKNOWN_ERROR"}`, domain.ErrTransient},
		{"http 429", 429, ``, domain.ErrRateLimited},
		{"http 403", 403, ``, domain.ErrAccessDenied},
		{"http 401", 401, ``, domain.ErrAccessDenied},
		{"http 500", 500, ``, domain.ErrTransient},
		{"garbage body", 200, `<html>`, domain.ErrTransient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}, 0)

			_, err := c.FetchDetails(context.Background(), "x", "en")
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestFetchDetails_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(&Config{APIKey: "secret-key", BaseURL: url, Timeout: time.Second})
	_, err := c.FetchDetails(context.Background(), "x", "")
	if !errors.Is(err, domain.ErrTransient) {
		t.Errorf("expected ErrTransient, got %v", err)
	}
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Errorf("expected the dial error in the chain, got %v", err)
	}
	if strings.Contains(err.Error(), "secret-key") {
		t.Errorf("error leaks the API key: %v", err)
	}
}

func TestFetchDetails_CanceledContextKeepsCause(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, okBody)
	}, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.FetchDetails(ctx, "x", "")
	if !errors.Is(err, domain.ErrTransient) || !errors.Is(err, context.Canceled) {
		t.Errorf("expected ErrTransient wrapping context.Canceled, got %v", err)
	}
}

func TestFetchDetails_DecodeErrorKeepsCause(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	}, 0)

	_, err := c.FetchDetails(context.Background(), "x", "")
	var syntaxErr *json.SyntaxError
	if !errors.Is(err, domain.ErrTransient) || !errors.As(err, &syntaxErr) {
		t.Errorf("expected ErrTransient wrapping a json.SyntaxError, got %v", err)
	}
}

func TestFetchDetails_MissingGeometry(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":"OK","result":{"place_id":"ChIJabc","name":"Sem Mapa"}}`)
	}, 0)

	p, err := c.FetchDetails(context.Background(), "ChIJabc", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !p.Upstream.Location.IsZero() {
		t.Errorf("missing geometry must leave the zero point, got %+v", p.Upstream.Location)
	}
}

func TestFetchDetails_LocalLimiterFailsFast(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = io.WriteString(w, okBody)
	}, 0.001)

	if _, err := c.FetchDetails(context.Background(), "a", ""); err != nil {
		t.Fatalf("first call: %v", err)
	}
	_, err := c.FetchDetails(context.Background(), "b", "")
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("expected 1 upstream call, got %d", calls.Load())
	}
}
