package request

import (
	"fmt"
	"math"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/search/filter"
)

// MaxOffset bounds the linear skip over filtered candidates.
const MaxOffset = 10_000

// Limits carries the configured defaults and caps for nearby queries.
type Limits struct {
	DefaultRadiusKm float64
	MaxRadiusKm     float64
	DefaultLimit    int
	MaxLimit        int
}

// DefaultLimits mirrors the service defaults.
func DefaultLimits() Limits {
	return Limits{DefaultRadiusKm: 10, MaxRadiusKm: 50, DefaultLimit: 50, MaxLimit: 100}
}

// Nearby is a validated nearby search query.
type Nearby struct {
	center   geo.Point
	radiusKm float64
	filters  filter.Filters
	limit    int
	offset   int
}

// New validates and normalizes nearby search parameters.
// A non-positive radius or limit takes the default; values above the cap are clamped.
func New(center geo.Point, radiusKm float64, filters filter.Filters, limit, offset int, lim Limits) (Nearby, error) {
	if err := center.Validate(); err != nil {
		return Nearby{}, fmt.Errorf("center: %w", err)
	}
	if math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return Nearby{}, fmt.Errorf("radiusKm must be a finite number")
	}
	if radiusKm <= 0 {
		radiusKm = lim.DefaultRadiusKm
	}
	if radiusKm > lim.MaxRadiusKm {
		radiusKm = lim.MaxRadiusKm
	}
	if limit <= 0 {
		limit = lim.DefaultLimit
	}
	if limit > lim.MaxLimit {
		limit = lim.MaxLimit
	}
	if offset < 0 {
		return Nearby{}, fmt.Errorf("offset must not be negative")
	}
	if offset > MaxOffset {
		return Nearby{}, fmt.Errorf("offset too large (max %d)", MaxOffset)
	}
	return Nearby{
		center:   center,
		radiusKm: radiusKm,
		filters:  filters,
		limit:    limit,
		offset:   offset,
	}, nil
}

// Center returns the search center.
func (n *Nearby) Center() geo.Point { return n.center }

// RadiusKm returns the search radius in kilometers.
func (n *Nearby) RadiusKm() float64 { return n.radiusKm }

// Filters returns the in-memory post-filters.
func (n *Nearby) Filters() filter.Filters { return n.filters }

// Limit returns the page size.
func (n *Nearby) Limit() int { return n.limit }

// Offset returns the number of filtered results to skip.
func (n *Nearby) Offset() int { return n.offset }

// Candidates returns how many geo index entries to request:
// (offset+limit)*overFetch, capped at maxCandidates.
func (n *Nearby) Candidates(overFetch, maxCandidates int) int {
	if overFetch < 1 {
		overFetch = 1
	}
	c := (n.offset + n.limit) * overFetch
	if maxCandidates > 0 && c > maxCandidates {
		c = maxCandidates
	}
	return c
}
