package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	return math.Abs(a-b) < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	if d := Haversine(-23.5, -46.6, -23.5, -46.6); d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_SaoPaulo_Rio(t *testing.T) {
	// Praça da Sé to Cristo Redentor is roughly 360 km.
	d := Haversine(-23.5505, -46.6333, -22.9519, -43.2105)
	if d < 350 || d > 365 {
		t.Fatalf("want ~360 km, got %f", d)
	}
}

func TestHaversine_Antipodes(t *testing.T) {
	d := Haversine(0, 0, 0, 180)
	if !almost(d, math.Pi*EarthRadiusKm, 1e-6) {
		t.Fatalf("want half circumference, got %f", d)
	}
}

func TestPoint_DistanceKm_OneDegreeLat(t *testing.T) {
	d := Point{Lat: 0, Lng: 0}.DistanceKm(Point{Lat: 1, Lng: 0})
	if !almost(d, 111.19, 0.05) {
		t.Fatalf("want ~111.19 km, got %f", d)
	}
}

func TestPoint_Validate(t *testing.T) {
	tests := []struct {
		p       Point
		wantErr bool
	}{
		{Point{Lat: -23.5, Lng: -46.6}, false},
		{Point{Lat: 90, Lng: 180}, false},
		{Point{Lat: -90, Lng: -180}, false},
		{Point{Lat: 90.1, Lng: 0}, true},
		{Point{Lat: 0, Lng: -180.5}, true},
		{Point{Lat: math.NaN(), Lng: 0}, true},
	}
	for _, tc := range tests {
		err := tc.p.Validate()
		if (err != nil) != tc.wantErr {
			t.Errorf("Validate(%+v) err=%v, wantErr=%v", tc.p, err, tc.wantErr)
		}
	}
}

func TestBounds_Contains(t *testing.T) {
	b := Bounds{
		NorthEast: Point{Lat: -23.4, Lng: -46.5},
		SouthWest: Point{Lat: -23.6, Lng: -46.7},
	}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"inside", Point{Lat: -23.5, Lng: -46.6}, true},
		{"north edge", Point{Lat: -23.4, Lng: -46.6}, true},
		{"south-west corner", Point{Lat: -23.6, Lng: -46.7}, true},
		{"north of box", Point{Lat: -23.39, Lng: -46.6}, false},
		{"east of box", Point{Lat: -23.5, Lng: -46.49}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Contains(tc.p); got != tc.want {
				t.Errorf("Contains(%+v) = %v, want %v", tc.p, got, tc.want)
			}
		})
	}
}

func TestBounds_Contains_Antimeridian(t *testing.T) {
	// Fiji viewport spanning 179E..-179W.
	b := Bounds{
		NorthEast: Point{Lat: -16, Lng: -179},
		SouthWest: Point{Lat: -19, Lng: 179},
	}
	if !b.Contains(Point{Lat: -17, Lng: 179.5}) {
		t.Error("expected point east of 179 to be inside")
	}
	if !b.Contains(Point{Lat: -17, Lng: -179.5}) {
		t.Error("expected point west of -179 to be inside")
	}
	if b.Contains(Point{Lat: -17, Lng: 0}) {
		t.Error("expected prime meridian to be outside")
	}
}

func TestBounds_Validate(t *testing.T) {
	ok := Bounds{NorthEast: Point{Lat: 1, Lng: 1}, SouthWest: Point{Lat: 0, Lng: 0}}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	flipped := Bounds{NorthEast: Point{Lat: 0, Lng: 1}, SouthWest: Point{Lat: 1, Lng: 0}}
	if err := flipped.Validate(); err == nil {
		t.Fatal("expected error for inverted latitudes")
	}
}
