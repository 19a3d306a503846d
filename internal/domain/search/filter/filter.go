package filter

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
	"github.com/kailas-cloud/placecache/internal/domain/place"
	"github.com/kailas-cloud/placecache/internal/domain/search/sortkey"
)

// MaxTags is the maximum number of tags in a tag filter.
const MaxTags = 32

// Filters is the in-memory post-filter applied to geo index candidates.
type Filters struct {
	category       string
	minRating      float64
	tags           []string
	bounds         *geo.Bounds
	includeReviews bool
	sortBy         sortkey.Key
	active         bool
}

// New validates and creates Filters. A nil active means active records only.
func New(
	category string,
	minRating float64,
	tags []string,
	bounds *geo.Bounds,
	includeReviews bool,
	sortBy sortkey.Key,
	active *bool,
) (Filters, error) {
	if minRating < 0 || minRating > 5 {
		return Filters{}, fmt.Errorf("minRating must be between 0 and 5, got %g", minRating)
	}
	if len(tags) > MaxTags {
		return Filters{}, fmt.Errorf("too many tags (max %d)", MaxTags)
	}
	for _, t := range tags {
		if strings.TrimSpace(t) == "" {
			return Filters{}, fmt.Errorf("tags must not be empty")
		}
	}
	if bounds != nil {
		if err := bounds.Validate(); err != nil {
			return Filters{}, fmt.Errorf("bounds: %w", err)
		}
	}
	if sortBy == "" {
		sortBy = sortkey.Distance
	}
	if !sortBy.IsValid() {
		return Filters{}, fmt.Errorf("invalid sortBy: %q", sortBy)
	}
	isActive := true
	if active != nil {
		isActive = *active
	}
	return Filters{
		category:       strings.TrimSpace(category),
		minRating:      minRating,
		tags:           tags,
		bounds:         bounds,
		includeReviews: includeReviews,
		sortBy:         sortBy,
		active:         isActive,
	}, nil
}

// Default returns filters matching every active record, sorted by distance.
func Default() Filters {
	return Filters{sortBy: sortkey.Distance, active: true}
}

// Category returns the required category ("" = any).
func (f Filters) Category() string { return f.category }

// MinRating returns the upstream rating floor (0 = none).
func (f Filters) MinRating() float64 { return f.minRating }

// Tags returns the type tags of which at least one must match.
func (f Filters) Tags() []string { return f.tags }

// Bounds returns the map viewport, if any.
func (f Filters) Bounds() *geo.Bounds { return f.bounds }

// IncludeReviews reports whether the caller asked for review data.
func (f Filters) IncludeReviews() bool { return f.includeReviews }

// SortBy returns the page ordering.
func (f Filters) SortBy() sortkey.Key { return f.sortBy }

// Active returns the required active flag.
func (f Filters) Active() bool { return f.active }

// Match applies the filters in order: category, active flag, rating floor,
// bounds containment, tag intersection.
func (f Filters) Match(r *place.Record) bool {
	if f.category != "" && !strings.EqualFold(r.Platform.Category, f.category) {
		return false
	}
	if r.Sync.IsActive != f.active {
		return false
	}
	if f.minRating > 0 && r.Upstream.Rating < f.minRating {
		return false
	}
	if f.bounds != nil && !f.bounds.Contains(r.Upstream.Location) {
		return false
	}
	if len(f.tags) > 0 && !r.HasAnyType(f.tags) {
		return false
	}
	return true
}
