// Package geo holds coordinate value objects and great-circle math.
package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0088

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// Validate checks that latitude is in [-90,90] and longitude in [-180,180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lng) {
		return fmt.Errorf("coordinates must be numbers")
	}
	if p.Lat < -90 || p.Lat > 90 {
		return fmt.Errorf("lat must be between -90 and 90, got %g", p.Lat)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return fmt.Errorf("lng must be between -180 and 180, got %g", p.Lng)
	}
	return nil
}

// IsZero reports whether p is the zero value.
func (p Point) IsZero() bool { return p.Lat == 0 && p.Lng == 0 }

// DistanceKm returns the great-circle distance between p and q in kilometers.
func (p Point) DistanceKm(q Point) float64 {
	return Haversine(p.Lat, p.Lng, q.Lat, q.Lng)
}

// Haversine returns the great-circle distance in kilometers between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	if a > 1 {
		a = 1
	}
	return 2 * EarthRadiusKm * math.Asin(math.Sqrt(a))
}

// Bounds is a map viewport given by its north-east and south-west corners.
type Bounds struct {
	NorthEast Point `json:"northeast"`
	SouthWest Point `json:"southwest"`
}

// Validate checks both corners and latitude ordering.
func (b Bounds) Validate() error {
	if err := b.NorthEast.Validate(); err != nil {
		return fmt.Errorf("northeast: %w", err)
	}
	if err := b.SouthWest.Validate(); err != nil {
		return fmt.Errorf("southwest: %w", err)
	}
	if b.SouthWest.Lat > b.NorthEast.Lat {
		return fmt.Errorf("southwest lat %g is north of northeast lat %g", b.SouthWest.Lat, b.NorthEast.Lat)
	}
	return nil
}

// Contains reports whether p lies inside b, edges included.
// A box whose west edge is east of its east edge crosses the antimeridian.
func (b Bounds) Contains(p Point) bool {
	if p.Lat < b.SouthWest.Lat || p.Lat > b.NorthEast.Lat {
		return false
	}
	west, east := b.SouthWest.Lng, b.NorthEast.Lng
	if west <= east {
		return p.Lng >= west && p.Lng <= east
	}
	return p.Lng >= west || p.Lng <= east
}

// Entry is a geo index entry derived from an active place record.
type Entry struct {
	PlaceID string
	Point   Point
}

// Hit is a geo index match with its distance from the query center.
type Hit struct {
	PlaceID    string
	DistanceKm float64
}
