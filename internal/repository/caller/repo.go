package caller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kailas-cloud/placecache/internal/db"
	"github.com/kailas-cloud/placecache/internal/domain"
	domcaller "github.com/kailas-cloud/placecache/internal/domain/caller"
)

// store is the consumer interface for user profiles (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
}

// Repo reads user profiles written by the identity service to {prefix}user:{id}.
type Repo struct {
	store  store
	prefix string
}

// New creates a caller profile repository.
func New(s store, keyPrefix string) *Repo {
	return &Repo{store: s, prefix: keyPrefix + "user:"}
}

// Profile returns the caller's profile or domain.ErrNotFound.
func (r *Repo) Profile(ctx context.Context, callerID string) (domcaller.Profile, error) {
	key := r.prefix + callerID
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domcaller.Profile{}, domain.ErrNotFound
		}
		return domcaller.Profile{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	var arr []domcaller.Profile
	if err := json.Unmarshal(raw, &arr); err != nil {
		return domcaller.Profile{}, fmt.Errorf("decode %s: %w", key, err)
	}
	if len(arr) == 0 {
		return domcaller.Profile{}, domain.ErrNotFound
	}
	p := arr[0]
	if p.ID == "" {
		p.ID = callerID
	}
	return p, nil
}

// IsCallerActive reports whether the caller's profile is active.
func (r *Repo) IsCallerActive(ctx context.Context, callerID string) (bool, error) {
	p, err := r.Profile(ctx, callerID)
	if err != nil {
		return false, err
	}
	return p.Active, nil
}
