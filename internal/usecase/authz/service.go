package authz

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/placecache/internal/domain"
)

// Service gates operations on caller identity.
type Service struct {
	dir         Directory
	checkActive bool
}

// New creates a gate. With checkActive false any non-empty caller is allowed.
func New(dir Directory, checkActive bool) *Service {
	return &Service{dir: dir, checkActive: checkActive}
}

// Authorize checks that callerID is present and, when enabled, active.
func (s *Service) Authorize(ctx context.Context, callerID string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}
	if !s.checkActive {
		return nil
	}
	active, err := s.dir.IsCallerActive(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("caller %s: %w", callerID, domain.ErrPermissionDenied)
		}
		return fmt.Errorf("check caller %s: %w: %w", callerID, domain.ErrInternal, err)
	}
	if !active {
		return fmt.Errorf("caller %s inactive: %w", callerID, domain.ErrPermissionDenied)
	}
	return nil
}

// AuthorizeAdmin checks that callerID is an active admin. The profile is
// always read, regardless of checkActive.
func (s *Service) AuthorizeAdmin(ctx context.Context, callerID string) error {
	if callerID == "" {
		return domain.ErrUnauthenticated
	}
	p, err := s.dir.Profile(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("caller %s: %w", callerID, domain.ErrPermissionDenied)
		}
		return fmt.Errorf("read caller %s: %w: %w", callerID, domain.ErrInternal, err)
	}
	if !p.IsAdmin() {
		return fmt.Errorf("caller %s is not an admin: %w", callerID, domain.ErrPermissionDenied)
	}
	return nil
}
