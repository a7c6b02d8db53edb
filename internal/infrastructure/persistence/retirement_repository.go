package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/portal/backend/internal/domain/retirement"
	"github.com/portal/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContributionsRepository implements retirement.ContributionsRepository
type GormContributionsRepository struct {
	db *gorm.DB
}

// NewGormContributionsRepository creates a new GormContributionsRepository
func NewGormContributionsRepository(db *gorm.DB) *GormContributionsRepository {
	return &GormContributionsRepository{db: db}
}

// FindByUserID returns the user's percentages, or the 2/2/2 default when
// the user never saved any.
func (r *GormContributionsRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*retirement.Contributions, error) {
	var model models.ContributionsModel
	err := r.db.WithContext(ctx).First(&model, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return retirement.DefaultContributions(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save upserts the user's percentages
func (r *GormContributionsRepository) Save(ctx context.Context, c *retirement.Contributions) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"pre_tax", "after_tax", "roth", "updated_at"}),
		}).
		Create(models.ContributionsModelFromDomain(c)).Error
}

// GormAllocationRepository implements retirement.AllocationRepository
type GormAllocationRepository struct {
	db *gorm.DB
}

// NewGormAllocationRepository creates a new GormAllocationRepository
func NewGormAllocationRepository(db *gorm.DB) *GormAllocationRepository {
	return &GormAllocationRepository{db: db}
}

// Save upserts the user's allocation
func (r *GormAllocationRepository) Save(ctx context.Context, a *retirement.Allocation) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"stocks", "funds", "bonds"}),
		}).
		Create(models.AllocationModelFromDomain(a)).Error
}

// FindByUserID returns the user's allocations. A non-nil threshold keeps
// only rows whose stock share is strictly above it; the value is always
// bound as a parameter.
func (r *GormAllocationRepository) FindByUserID(ctx context.Context, userID uuid.UUID, threshold *int) ([]*retirement.Allocation, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if threshold != nil {
		query = query.Where("stocks > ?", *threshold)
	}

	var rows []*models.AllocationModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*retirement.Allocation, len(rows))
	for i, m := range rows {
		out[i] = m.ToDomain()
	}
	return out, nil
}

// GormMemoRepository implements retirement.MemoRepository
type GormMemoRepository struct {
	db *gorm.DB
}

// NewGormMemoRepository creates a new GormMemoRepository
func NewGormMemoRepository(db *gorm.DB) *GormMemoRepository {
	return &GormMemoRepository{db: db}
}

// Create inserts a memo
func (r *GormMemoRepository) Create(ctx context.Context, m *retirement.Memo) error {
	return r.db.WithContext(ctx).Create(models.MemoModelFromDomain(m)).Error
}

// FindAll lists memos newest first
func (r *GormMemoRepository) FindAll(ctx context.Context) ([]*retirement.Memo, error) {
	var rows []*models.MemoModel
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	memos := make([]*retirement.Memo, len(rows))
	for i, m := range rows {
		memos[i] = m.ToDomain()
	}
	return memos, nil
}

var (
	_ retirement.ContributionsRepository = (*GormContributionsRepository)(nil)
	_ retirement.AllocationRepository    = (*GormAllocationRepository)(nil)
	_ retirement.MemoRepository          = (*GormMemoRepository)(nil)
)
