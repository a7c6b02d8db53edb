package identity

import (
	"context"
	"errors"

	"github.com/portal/backend/internal/domain/identity"
	"github.com/portal/backend/internal/domain/retirement"
	"github.com/portal/backend/internal/domain/shared"
	"github.com/portal/backend/internal/infrastructure/auth"
	"github.com/portal/backend/internal/infrastructure/logger"
	"github.com/portal/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ErrInvalidCredentials never reveals which of username or password was wrong
var ErrInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username and/or password")

// LoginRecorder receives one observation per login attempt
type LoginRecorder interface {
	Login(outcome string)
}

// AuthService handles signup, login, logout and session verification
type AuthService struct {
	userRepo    identity.UserRepository
	allocRepo   retirement.AllocationRepository
	sessions    *auth.SessionService
	revocations auth.RevocationStore
	recorder    LoginRecorder
	logger      *zap.Logger
}

// NewAuthService creates a new authentication service. recorder may be nil.
func NewAuthService(
	userRepo identity.UserRepository,
	allocRepo retirement.AllocationRepository,
	sessions *auth.SessionService,
	revocations auth.RevocationStore,
	recorder LoginRecorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		allocRepo:   allocRepo,
		sessions:    sessions,
		revocations: revocations,
		recorder:    recorder,
		logger:      logger,
	}
}

// Login verifies credentials and issues a session
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "session", "login")
	defer span.End()

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			telemetry.RecordError(span, err)
			return nil, err
		}
		// spend the same bcrypt time as a wrong password
		identity.DummyPasswordCheck(input.Password)
		return nil, s.loginFailed(ctx, input.Username)
	}
	if !user.VerifyPassword(input.Password) {
		return nil, s.loginFailed(ctx, input.Username)
	}

	result, err := s.issue(user)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Bool("user.admin", user.IsAdmin))
	s.record("success")
	logger.Enrich(ctx, s.logger).Info("User logged in", zap.String("username", user.Username))
	return result, nil
}

func (s *AuthService) loginFailed(ctx context.Context, username string) error {
	s.record("failure")
	logger.Enrich(ctx, s.logger).Warn("Failed login attempt", zap.String("username", username))
	return ErrInvalidCredentials
}

// Signup validates and creates a regular user, seeds a random allocation
// and issues a session.
func (s *AuthService) Signup(ctx context.Context, input identity.SignupInput) (*LoginResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "session", "signup")
	defer span.End()

	user, err := identity.NewUser(input)
	if err != nil {
		return nil, err
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, user.Username)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.ErrAlreadyExists.Code, "User name already in use")
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.allocRepo.Save(ctx, retirement.NewRandomAllocation(user.ID)); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	logger.Enrich(ctx, s.logger).Info("User signed up", zap.String("username", user.Username))
	return s.issue(user)
}

// Authenticate verifies a session token and rejects revoked sessions
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := s.sessions.Parse(token)
	if err != nil {
		return nil, err
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, auth.ErrTokenRevoked
	}
	return claims, nil
}

// Logout revokes the session for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	if err := s.revocations.Revoke(ctx, claims.ID, s.sessions.RemainingTTL(claims)); err != nil {
		return err
	}
	logger.Enrich(ctx, s.logger).Info("User logged out", zap.String("username", claims.Username))
	return nil
}

func (s *AuthService) issue(user *identity.User) (*LoginResult, error) {
	token, expiresAt, err := s.sessions.Issue(auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserInfo{
			ID:        user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			IsAdmin:   user.IsAdmin,
		},
	}, nil
}

func (s *AuthService) record(outcome string) {
	if s.recorder != nil {
		s.recorder.Login(outcome)
	}
}
