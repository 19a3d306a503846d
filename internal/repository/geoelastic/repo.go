package geoelastic

import (
	"context"
	"fmt"
	"strconv"

	"github.com/olivere/elastic/v7"

	"github.com/kailas-cloud/placecache/internal/domain/geo"
)

const locationField = "location"

// mapping declares location as geo_point so distance queries and sorts work.
const mapping = `{
	"mappings": {
		"properties": {
			"place_id": {"type": "keyword"},
			"location": {"type": "geo_point"}
		}
	}
}`

type entryDoc struct {
	PlaceID  string           `json:"place_id"`
	Location elastic.GeoPoint `json:"location"`
}

// Repo is a geo index backed by an Elasticsearch index of geo_point documents.
type Repo struct {
	client *elastic.Client
	index  string
}

// New creates an Elasticsearch geo index over the given index name.
func New(client *elastic.Client, index string) *Repo {
	return &Repo{client: client, index: index}
}

// NewClient builds a client. Sniffing is off unless the cluster exposes node addresses.
func NewClient(urls []string, sniff bool) (*elastic.Client, error) {
	c, err := elastic.NewClient(
		elastic.SetURL(urls...),
		elastic.SetSniff(sniff),
	)
	if err != nil {
		return nil, fmt.Errorf("elastic client: %w", err)
	}
	return c, nil
}

// EnsureIndex creates the index with its geo_point mapping when missing.
func (r *Repo) EnsureIndex(ctx context.Context) error {
	exists, err := r.client.IndexExists(r.index).Do(ctx)
	if err != nil {
		return fmt.Errorf("index exists %s: %w", r.index, err)
	}
	if exists {
		return nil
	}
	if _, err := r.client.CreateIndex(r.index).BodyString(mapping).Do(ctx); err != nil {
		return fmt.Errorf("create index %s: %w", r.index, err)
	}
	return nil
}

// Upsert indexes the entry under its place id.
func (r *Repo) Upsert(ctx context.Context, e geo.Entry) error {
	if err := e.Point.Validate(); err != nil {
		return fmt.Errorf("geo entry %s: %w", e.PlaceID, err)
	}
	doc := entryDoc{
		PlaceID:  e.PlaceID,
		Location: elastic.GeoPoint{Lat: e.Point.Lat, Lon: e.Point.Lng},
	}
	_, err := r.client.Index().Index(r.index).Id(e.PlaceID).BodyJson(doc).Do(ctx)
	if err != nil {
		return fmt.Errorf("index geo %s: %w", e.PlaceID, err)
	}
	return nil
}

// Remove deletes the entry. A missing document is not an error.
func (r *Repo) Remove(ctx context.Context, placeID string) error {
	_, err := r.client.Delete().Index(r.index).Id(placeID).Do(ctx)
	if err != nil && !elastic.IsNotFound(err) {
		return fmt.Errorf("delete geo %s: %w", placeID, err)
	}
	return nil
}

// FindWithinRadius filters by geo distance and sorts by arc distance, nearest first.
func (r *Repo) FindWithinRadius(
	ctx context.Context, center geo.Point, radiusKm float64, limit int,
) ([]geo.Hit, error) {
	q := elastic.NewBoolQuery().Filter(
		elastic.NewGeoDistanceQuery(locationField).
			Lat(center.Lat).
			Lon(center.Lng).
			Distance(strconv.FormatFloat(radiusKm, 'f', -1, 64) + "km"),
	)
	sort := elastic.NewGeoDistanceSort(locationField).
		Point(center.Lat, center.Lng).
		Asc().
		Unit("km").
		DistanceType("arc")

	res, err := r.client.Search().
		Index(r.index).
		Query(q).
		SortBy(sort).
		Size(limit).
		FetchSource(false).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("geo search %g km: %w", radiusKm, err)
	}
	if res.Hits == nil {
		return nil, nil
	}

	hits := make([]geo.Hit, 0, len(res.Hits.Hits))
	for _, h := range res.Hits.Hits {
		hit := geo.Hit{PlaceID: h.Id}
		if len(h.Sort) > 0 {
			if d, ok := h.Sort[0].(float64); ok {
				hit.DistanceKm = d
			}
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Ping reports cluster reachability for health checks.
func (r *Repo) Ping(ctx context.Context) error {
	if _, err := r.client.ClusterHealth().Do(ctx); err != nil {
		return fmt.Errorf("elastic health: %w", err)
	}
	return nil
}
