package identity

import (
	"context"
	"strings"
	"time"

	"github.com/portal/backend/internal/domain/identity"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const benefitDateLayout = "2006-01-02"

// BenefitsService lists regular users and lets administrators set their
// benefit start dates.
type BenefitsService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewBenefitsService creates a new BenefitsService
func NewBenefitsService(userRepo identity.UserRepository, logger *zap.Logger) *BenefitsService {
	return &BenefitsService{userRepo: userRepo, logger: logger}
}

// List returns every non-admin user
func (s *BenefitsService) List(ctx context.Context) ([]*identity.User, error) {
	return s.userRepo.FindNonAdmins(ctx)
}

// UpdateStartDate sets the benefit start date of a regular user.
// Administrators cannot be targeted.
func (s *BenefitsService) UpdateStartDate(ctx context.Context, in BenefitUpdateInput) error {
	id, err := identity.IDFromString(strings.TrimSpace(in.UserID))
	if err != nil {
		return err
	}
	start, err := time.Parse(benefitDateLayout, strings.TrimSpace(in.StartDate))
	if err != nil {
		return shared.InvalidInput("Benefit start date must be in YYYY-MM-DD format")
	}

	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return shared.ErrNotFound
	}

	user.SetBenefitStartDate(start)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	logger.Enrich(ctx, s.logger).Info("Benefit start date updated",
		zap.String("user_id", id.String()),
		zap.String("start_date", start.Format(benefitDateLayout)))
	return nil
}
