package authz

import (
	"context"

	"github.com/kailas-cloud/placecache/internal/domain/caller"
)

// Directory is the identity collaborator.
// Profile returns domain.ErrNotFound for unknown callers.
type Directory interface {
	IsCallerActive(ctx context.Context, callerID string) (bool, error)
	Profile(ctx context.Context, callerID string) (caller.Profile, error)
}
