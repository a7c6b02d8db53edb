package retirement

import (
	"context"

	"github.com/google/uuid"
)

// ContributionsRepository persists per-user contribution percentages
type ContributionsRepository interface {
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Contributions, error)
	Save(ctx context.Context, c *Contributions) error
}

// AllocationRepository persists per-user asset allocations
type AllocationRepository interface {
	Save(ctx context.Context, a *Allocation) error
	// FindByUserID returns the user's allocations, limited to those whose
	// stocks percentage exceeds threshold when threshold is non-nil.
	FindByUserID(ctx context.Context, userID uuid.UUID, threshold *int) ([]*Allocation, error)
}

// MemoRepository persists memos
type MemoRepository interface {
	Create(ctx context.Context, m *Memo) error
	FindAll(ctx context.Context) ([]*Memo, error)
}
