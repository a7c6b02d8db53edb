package identity

import (
	"context"
	"fmt"

	"github.com/portal/backend/internal/domain/identity"
	"github.com/portal/backend/internal/domain/retirement"
	"go.uber.org/zap"
)

// SeedAccount describes one account created by Seeder
type SeedAccount struct {
	identity.SignupInput
	Admin bool
}

// DefaultSeedAccounts are the demo accounts for a fresh install
func DefaultSeedAccounts() []SeedAccount {
	return []SeedAccount{
		{SignupInput: identity.SignupInput{Username: "admin", FirstName: "Node Goat", LastName: "Admin", Password: "Admin_123", Verify: "Admin_123"}, Admin: true},
		{SignupInput: identity.SignupInput{Username: "user1", FirstName: "John", LastName: "Doe", Password: "User1_123", Verify: "User1_123"}},
		{SignupInput: identity.SignupInput{Username: "user2", FirstName: "Will", LastName: "Smith", Password: "User2_123", Verify: "User2_123"}},
	}
}

// Seeder creates accounts that do not exist yet
type Seeder struct {
	userRepo  identity.UserRepository
	allocRepo retirement.AllocationRepository
	logger    *zap.Logger
}

// NewSeeder creates a new Seeder
func NewSeeder(userRepo identity.UserRepository, allocRepo retirement.AllocationRepository, logger *zap.Logger) *Seeder {
	return &Seeder{userRepo: userRepo, allocRepo: allocRepo, logger: logger}
}

// Seed creates each missing account and, for regular users, a random
// allocation. Existing usernames are left untouched. It returns how many
// accounts were created.
func (s *Seeder) Seed(ctx context.Context, accounts []SeedAccount) (int, error) {
	created := 0
	for _, a := range accounts {
		exists, err := s.userRepo.ExistsByUsername(ctx, a.Username)
		if err != nil {
			return created, err
		}
		if exists {
			s.logger.Info("Seed account already exists", zap.String("username", a.Username))
			continue
		}

		newUser := identity.NewUser
		if a.Admin {
			newUser = identity.NewAdmin
		}
		user, err := newUser(a.SignupInput)
		if err != nil {
			return created, fmt.Errorf("seed account %s: %w", a.Username, err)
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return created, err
		}
		if !a.Admin {
			if err := s.allocRepo.Save(ctx, retirement.NewRandomAllocation(user.ID)); err != nil {
				return created, err
			}
		}

		created++
		s.logger.Info("Seed account created",
			zap.String("username", user.Username),
			zap.Bool("admin", user.IsAdmin))
	}
	return created, nil
}
