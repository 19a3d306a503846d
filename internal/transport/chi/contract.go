package chi

import (
	"context"

	"github.com/kailas-cloud/placecache/internal/domain/place"
	"github.com/kailas-cloud/placecache/internal/domain/search/request"
	"github.com/kailas-cloud/placecache/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/placecache/internal/usecase/health"
	resolveuc "github.com/kailas-cloud/placecache/internal/usecase/resolve"
)

// Resolver serves place resolutions.
type Resolver interface {
	Resolve(ctx context.Context, req resolveuc.Request) (resolveuc.Result, error)
}

// NearbySearcher serves radius searches.
type NearbySearcher interface {
	Search(ctx context.Context, q *request.Nearby) (result.Page, error)
}

// Moderator toggles place visibility.
type Moderator interface {
	SetActive(ctx context.Context, id string, active bool) (place.Record, error)
}

// Authorizer gates callers.
type Authorizer interface {
	Authorize(ctx context.Context, callerID string) error
	AuthorizeAdmin(ctx context.Context, callerID string) error
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
