package placecache

import (
	"fmt"

	"github.com/kailas-cloud/placecache/internal/domain"
)

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument  = domain.ErrInvalidArgument
	ErrUnauthenticated  = domain.ErrUnauthenticated
	ErrPermissionDenied = domain.ErrPermissionDenied
	ErrNotFound         = domain.ErrNotFound
	ErrUnavailable      = domain.ErrUnavailable
	ErrInternal         = domain.ErrInternal
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("placecache: %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the error code onto the matching sentinel.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "invalid_argument":
		return ErrInvalidArgument
	case "unauthenticated":
		return ErrUnauthenticated
	case "permission_denied":
		return ErrPermissionDenied
	case "not_found":
		return ErrNotFound
	case "unavailable":
		return ErrUnavailable
	default:
		return ErrInternal
	}
}
