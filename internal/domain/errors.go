package domain

import "errors"

// Caller-facing errors. The transport maps each to a stable error code.
var (
	// ErrInvalidArgument signals a malformed or incomplete request.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnauthenticated signals a request without caller identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrPermissionDenied signals an inactive or unauthorized caller.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable signals an upstream failure with no cached fallback.
	ErrUnavailable = errors.New("unavailable")
	// ErrInternal signals an unexpected persistence or programming failure.
	ErrInternal = errors.New("internal error")
)

// Upstream provider errors. The resolver collapses all but ErrUpstreamNotFound
// into ErrUnavailable when no cached record exists.
var (
	// ErrUpstreamNotFound signals the provider does not know the place id.
	ErrUpstreamNotFound = errors.New("upstream: place not found")
	// ErrRateLimited signals provider quota exhaustion or local rate limiting.
	ErrRateLimited = errors.New("upstream: rate limited")
	// ErrAccessDenied signals a provider authorization or configuration failure.
	ErrAccessDenied = errors.New("upstream: access denied")
	// ErrTransient signals any other provider or network failure.
	ErrTransient = errors.New("upstream: transient failure")
)

// IsUpstreamError reports whether err belongs to the upstream taxonomy.
func IsUpstreamError(err error) bool {
	return errors.Is(err, ErrUpstreamNotFound) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrTransient)
}
