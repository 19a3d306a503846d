package geoindex

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/placecache/internal/db"
	"github.com/kailas-cloud/placecache/internal/domain/geo"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	added    map[string][2]float64
	removed  []string
	lastKey  string
	lastArgs [4]float64
	hits     []db.GeoHit
	err      error
}

func (m *mockStore) GeoAdd(_ context.Context, key, member string, lon, lat float64) error {
	m.lastKey = key
	if m.added == nil {
		m.added = map[string][2]float64{}
	}
	m.added[member] = [2]float64{lon, lat}
	return m.err
}

func (m *mockStore) GeoRemove(_ context.Context, key, member string) error {
	m.lastKey = key
	m.removed = append(m.removed, member)
	return m.err
}

func (m *mockStore) GeoSearch(_ context.Context, key string, lon, lat, r float64, count int) ([]db.GeoHit, error) {
	m.lastKey = key
	m.lastArgs = [4]float64{lon, lat, r, float64(count)}
	return m.hits, m.err
}

func TestUpsert_LonLatOrder(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "pc:")

	err := repo.Upsert(context.Background(), geo.Entry{PlaceID: "ChIJabc", Point: geo.Point{Lat: -23.5, Lng: -46.6}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.lastKey != "pc:geo" {
		t.Errorf("key = %q", ms.lastKey)
	}
	if got := ms.added["ChIJabc"]; got != [2]float64{-46.6, -23.5} {
		t.Errorf("GEOADD got lon/lat %v", got)
	}
}

func TestUpsert_RejectsInvalidPoint(t *testing.T) {
	ms := &mockStore{}
	err := New(ms, "pc:").Upsert(context.Background(), geo.Entry{PlaceID: "x", Point: geo.Point{Lat: 95}})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(ms.added) != 0 {
		t.Error("invalid point must not be written")
	}
}

func TestUpsert_BeyondGeoBandDropsEntry(t *testing.T) {
	for _, lat := range []float64{86, -90} {
		ms := &mockStore{}
		err := New(ms, "pc:").Upsert(context.Background(), geo.Entry{PlaceID: "pole", Point: geo.Point{Lat: lat, Lng: 0}})
		if err != nil {
			t.Fatalf("lat %g: unexpected error: %v", lat, err)
		}
		if len(ms.added) != 0 {
			t.Errorf("lat %g: GEOADD must not be sent", lat)
		}
		if len(ms.removed) != 1 || ms.removed[0] != "pole" {
			t.Errorf("lat %g: stale entry not dropped, removed=%v", lat, ms.removed)
		}
	}
}

func TestRemove(t *testing.T) {
	ms := &mockStore{}
	if err := New(ms, "pc:").Remove(context.Background(), "ChIJabc"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.removed) != 1 || ms.removed[0] != "ChIJabc" {
		t.Errorf("removed = %v", ms.removed)
	}
}

func TestFindWithinRadius(t *testing.T) {
	ms := &mockStore{hits: []db.GeoHit{
		{Member: "a", DistKm: 0.4},
		{Member: "b", DistKm: 1.9},
	}}

	hits, err := New(ms, "pc:").FindWithinRadius(context.Background(), geo.Point{Lat: -23.5, Lng: -46.6}, 5, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ms.lastArgs != [4]float64{-46.6, -23.5, 5, 150} {
		t.Errorf("GEOSEARCH args = %v", ms.lastArgs)
	}
	if len(hits) != 2 || hits[0].PlaceID != "a" || hits[1].DistanceKm != 1.9 {
		t.Errorf("unexpected hits: %+v", hits)
	}
}

func TestFindWithinRadius_Error(t *testing.T) {
	ms := &mockStore{err: &db.Error{Op: db.OpGeoSearch, Err: errors.New("timeout")}}
	_, err := New(ms, "pc:").FindWithinRadius(context.Background(), geo.Point{}, 5, 10)

	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Errorf("expected wrapped db.Error, got %v", err)
	}
}
