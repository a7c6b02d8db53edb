package retirement

import (
	"context"

	"github.com/google/uuid"
	"github.com/portal/backend/internal/domain/identity"
	"github.com/portal/backend/internal/domain/retirement"
	"github.com/portal/backend/internal/domain/shared"
)

// Viewer is the signed-in user asking for data
type Viewer struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// AllocationsService returns asset allocations with ownership checks
type AllocationsService struct {
	repo retirement.AllocationRepository
}

// NewAllocationsService creates a new AllocationsService
func NewAllocationsService(repo retirement.AllocationRepository) *AllocationsService {
	return &AllocationsService{repo: repo}
}

// ForUser returns the target user's allocations. Regular users may only
// read their own; rawThreshold, when set, must be an integer 0-99.
func (s *AllocationsService) ForUser(ctx context.Context, viewer Viewer, rawUserID, rawThreshold string) ([]*retirement.Allocation, error) {
	target, err := identity.IDFromString(rawUserID)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin && target != viewer.UserID {
		return nil, shared.ErrForbidden
	}

	threshold, err := retirement.ParseThreshold(rawThreshold)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByUserID(ctx, target, threshold)
}
