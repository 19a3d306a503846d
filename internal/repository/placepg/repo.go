package placepg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/kailas-cloud/placecache/internal/domain"
	domplace "github.com/kailas-cloud/placecache/internal/domain/place"
)

// querier is the subset of *pgxpool.Pool the repository needs (ISP).
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repo stores each place record as a jsonb document in a single table.
type Repo struct {
	db    querier
	table string
}

// New creates a PostgreSQL place repository over the given table.
func New(db querier, table string) *Repo {
	return &Repo{db: db, table: pgx.Identifier{table}.Sanitize()}
}

// EnsureSchema creates the table when missing.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS ` + r.table + ` (
		id         text PRIMARY KEY,
		doc        jsonb NOT NULL,
		updated_at timestamptz NOT NULL DEFAULT now()
	)`
	if _, err := r.db.Exec(ctx, q); err != nil {
		return fmt.Errorf("create table %s: %w", r.table, err)
	}
	return nil
}

// Get returns a place record or domain.ErrNotFound.
func (r *Repo) Get(ctx context.Context, id string) (domplace.Record, error) {
	var raw []byte
	err := r.db.QueryRow(ctx, `SELECT doc FROM `+r.table+` WHERE id = $1`, id).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domplace.Record{}, domain.ErrNotFound
		}
		return domplace.Record{}, fmt.Errorf("select place %s: %w", id, err)
	}
	var rec domplace.Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return domplace.Record{}, fmt.Errorf("unmarshal place %s: %w", id, err)
	}
	return rec, nil
}

// Put inserts the document, or on conflict replaces only its upstream, sync
// and platform.category members. Counters in the stored document are kept.
func (r *Repo) Put(ctx context.Context, rec domplace.Record) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal place %s: %w", rec.ID, err)
	}
	q := `INSERT INTO ` + r.table + ` (id, doc) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET doc = jsonb_set(
			jsonb_set(
				jsonb_set(` + r.table + `.doc, '{upstream}', EXCLUDED.doc->'upstream'),
				'{sync}', EXCLUDED.doc->'sync'),
			'{platform,category}', EXCLUDED.doc->'platform'->'category', true),
			updated_at = now()`
	if _, err := r.db.Exec(ctx, q, rec.ID, doc); err != nil {
		return fmt.Errorf("upsert place %s: %w", rec.ID, err)
	}
	return nil
}

// GetMany aggregates the matching documents into one JSON array so a single
// row round-trip covers the batch. Missing ids are absent from the map.
func (r *Repo) GetMany(ctx context.Context, ids []string) (map[string]domplace.Record, error) {
	out := make(map[string]domplace.Record, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var raw []byte
	q := `SELECT coalesce(json_agg(doc), '[]') FROM ` + r.table + ` WHERE id = any($1)`
	if err := r.db.QueryRow(ctx, q, ids).Scan(&raw); err != nil {
		return nil, fmt.Errorf("select %d places: %w", len(ids), err)
	}
	var recs []domplace.Record
	if err := json.Unmarshal(raw, &recs); err != nil {
		return nil, fmt.Errorf("unmarshal places: %w", err)
	}
	for _, rec := range recs {
		out[rec.ID] = rec
	}
	return out, nil
}

// IncrementViews bumps platform.viewCount inside the document.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	q := `UPDATE ` + r.table + `
		SET doc = jsonb_set(doc, '{platform,viewCount}',
			to_jsonb(coalesce((doc->'platform'->>'viewCount')::bigint, 0) + 1), true),
			updated_at = now()
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("increment views %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
