package place

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/placecache/internal/db"
	"github.com/kailas-cloud/placecache/internal/domain"
	domplace "github.com/kailas-cloud/placecache/internal/domain/place"
)

const viewCountPath = "$.platform.viewCount"

// store is the consumer interface for place records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONSetNX(ctx context.Context, key, path string, data []byte) (bool, error)
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	JSONNumIncrBy(ctx context.Context, key, path string, val int64) error
}

// Repo stores place records as RedisJSON documents under {prefix}place:{id}.
type Repo struct {
	store  store
	prefix string
}

// New creates a place repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix + "place:"}
}

// Get returns a place record or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domplace.Record, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domplace.Record{}, domain.ErrNotFound
		}
		return domplace.Record{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	rec, ok, err := decode(raw)
	if err != nil {
		return domplace.Record{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if !ok {
		return domplace.Record{}, domain.ErrNotFound
	}
	return rec, nil
}

// Put creates the record when it is absent. An existing record only gets its
// upstream and sync sections and its category replaced, so counters bumped
// concurrently by IncrementViews survive a refresh. Sync is written last.
func (r *Repo) Put(ctx context.Context, rec domplace.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal place %s: %w", rec.ID, err)
	}
	key := r.key(rec.ID)
	created, err := r.store.JSONSetNX(ctx, key, "$", data)
	if err != nil {
		return fmt.Errorf("json.set nx %s: %w", key, err)
	}
	if created {
		return nil
	}

	sections := []struct {
		path string
		v    any
	}{
		{"$.upstream", rec.Upstream},
		{"$.platform.category", rec.Platform.Category},
		{"$.sync", rec.Sync},
	}
	for _, sec := range sections {
		raw, err := json.Marshal(sec.v)
		if err != nil {
			return fmt.Errorf("marshal %s %s: %w", key, sec.path, err)
		}
		if err := r.store.JSONSet(ctx, key, sec.path, raw); err != nil {
			return fmt.Errorf("json.set %s %s: %w", key, sec.path, err)
		}
	}
	return nil
}

// GetMany loads records in one round trip. Missing ids are absent from the map.
func (r *Repo) GetMany(ctx context.Context, ids []string) (map[string]domplace.Record, error) {
	out := make(map[string]domplace.Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	raws, err := r.store.JSONGetMulti(ctx, keys, "$")
	if err != nil {
		return nil, fmt.Errorf("json.get %d places: %w", len(keys), err)
	}
	for i, raw := range raws {
		if raw == nil {
			continue
		}
		rec, ok, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", keys[i], err)
		}
		if ok {
			out[ids[i]] = rec
		}
	}
	return out, nil
}

// IncrementViews bumps platform.viewCount in place.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	key := r.key(id)
	if err := r.store.JSONNumIncrBy(ctx, key, viewCountPath, 1); err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("json.numincrby %s: %w", key, err)
	}
	return nil
}

func (r *Repo) key(id string) string { return r.prefix + id }

// decode parses a JSON.GET $ reply, which wraps the document in an array.
func decode(raw []byte) (domplace.Record, bool, error) {
	var arr []domplace.Record
	if err := json.Unmarshal(raw, &arr); err != nil {
		return domplace.Record{}, false, err
	}
	if len(arr) == 0 {
		return domplace.Record{}, false, nil
	}
	return arr[0], true, nil
}
