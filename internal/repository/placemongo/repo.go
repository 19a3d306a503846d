package placemongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/kailas-cloud/placecache/internal/domain"
	domplace "github.com/kailas-cloud/placecache/internal/domain/place"
)

// collection is the consumer interface over *mongo.Collection (ISP).
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(ctx context.Context, filter any, opts ...*options.FindOptions) (*mongo.Cursor, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// Repo stores place records as MongoDB documents keyed by place id.
type Repo struct {
	coll collection
}

// New creates a MongoDB place repository.
func New(coll collection) *Repo {
	return &Repo{coll: coll}
}

// Get returns a place record or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domplace.Record, error) {
	var rec domplace.Record
	err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domplace.Record{}, domain.ErrNotFound
		}
		return domplace.Record{}, fmt.Errorf("find place %s: %w", id, err)
	}
	return rec, nil
}

// Put upserts the record. Upstream, sync and category are always set; the
// other platform fields are written only on insert so that a refresh never
// clobbers counters maintained with $inc.
func (r *Repo) Put(ctx context.Context, rec domplace.Record) error {
	onInsert, err := platformOnInsert(rec.Platform)
	if err != nil {
		return fmt.Errorf("encode place %s: %w", rec.ID, err)
	}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "upstream", Value: rec.Upstream},
			{Key: "platform.category", Value: rec.Platform.Category},
			{Key: "sync", Value: rec.Sync},
		}},
		{Key: "$setOnInsert", Value: onInsert},
	}
	_, err = r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: rec.ID}},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("upsert place %s: %w", rec.ID, err)
	}
	return nil
}

// platformOnInsert flattens the platform fields, minus category, into
// "platform.<field>" paths for $setOnInsert.
func platformOnInsert(p domplace.PlatformFields) (bson.D, error) {
	raw, err := bson.Marshal(p)
	if err != nil {
		return nil, err
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	out := make(bson.D, 0, len(fields))
	for _, f := range fields {
		if f.Key == "category" {
			continue
		}
		out = append(out, bson.E{Key: "platform." + f.Key, Value: f.Value})
	}
	return out, nil
}

// GetMany loads records with a single $in query. Missing ids are absent from the map.
func (r *Repo) GetMany(ctx context.Context, ids []string) (map[string]domplace.Record, error) {
	out := make(map[string]domplace.Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := r.coll.Find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}}})
	if err != nil {
		return nil, fmt.Errorf("find %d places: %w", len(ids), err)
	}
	var recs []domplace.Record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("decode places: %w", err)
	}
	for _, rec := range recs {
		out[rec.ID] = rec
	}
	return out, nil
}

// IncrementViews bumps platform.viewCount with $inc.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: id}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "platform.viewCount", Value: 1}}}},
	)
	if err != nil {
		return fmt.Errorf("increment views %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
