package result

import "github.com/kailas-cloud/placecache/internal/domain/place"

// Result is a single nearby hit: a record and its distance from the center.
type Result struct {
	record     place.Record
	distanceKm float64
}

// New creates a nearby result.
func New(record place.Record, distanceKm float64) Result {
	return Result{record: record, distanceKm: distanceKm}
}

// Record returns the place record.
func (r *Result) Record() place.Record { return r.record }

// DistanceKm returns the great-circle distance from the search center.
func (r *Result) DistanceKm() float64 { return r.distanceKm }

// Page is one page of nearby results.
type Page struct {
	Results []Result
	// Total is the number of candidates that passed the filters.
	Total int
	// HasMore is true when the page is full; it does not guarantee more exist.
	HasMore bool
}
