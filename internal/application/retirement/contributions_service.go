package retirement

import (
	"context"

	"github.com/google/uuid"
	"github.com/portal/backend/internal/domain/retirement"
	"github.com/portal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ContributionsService reads and updates 401k contribution percentages
type ContributionsService struct {
	repo   retirement.ContributionsRepository
	logger *zap.Logger
}

// NewContributionsService creates a new ContributionsService
func NewContributionsService(repo retirement.ContributionsRepository, logger *zap.Logger) *ContributionsService {
	return &ContributionsService{repo: repo, logger: logger}
}

// Get returns the user's current percentages
func (s *ContributionsService) Get(ctx context.Context, userID uuid.UUID) (*retirement.Contributions, error) {
	return s.repo.FindByUserID(ctx, userID)
}

// Update parses the submitted percentages and saves them when valid
func (s *ContributionsService) Update(ctx context.Context, userID uuid.UUID, preTax, afterTax, roth string) (*retirement.Contributions, error) {
	c, err := retirement.ParseContributions(userID, preTax, afterTax, roth)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Contributions updated",
		zap.String("user_id", userID.String()),
		zap.String("total", c.Total().String()))
	return c, nil
}
