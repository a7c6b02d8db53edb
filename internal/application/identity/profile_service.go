package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/portal/backend/internal/domain/identity"
	"github.com/portal/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProfileService reads and updates the signed-in user's own profile
type ProfileService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(userRepo identity.UserRepository, logger *zap.Logger) *ProfileService {
	return &ProfileService{userRepo: userRepo, logger: logger}
}

// Get returns the user's profile
func (s *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*identity.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// Update validates and saves the profile. On a validation error the
// returned user carries the submitted values so the form can be redisplayed.
func (s *ProfileService) Update(ctx context.Context, userID uuid.UUID, in ProfileInput) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := identity.Profile{
		SSN:         in.SSN,
		DOB:         in.DOB,
		Address:     in.Address,
		BankAcc:     in.BankAcc,
		BankRouting: in.BankRouting,
		Website:     in.Website,
	}
	if err := user.UpdateProfile(in.FirstName, in.LastName, profile); err != nil {
		user.FirstName, user.LastName, user.Profile = in.FirstName, in.LastName, profile
		return user, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("Profile updated", zap.String("user_id", userID.String()))
	return user, nil
}
