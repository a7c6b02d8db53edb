package identity

import (
	"time"

	"github.com/google/uuid"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult is a freshly issued session
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID        uuid.UUID
	Username  string
	FirstName string
	IsAdmin   bool
}

// ProfileInput carries the editable profile fields
type ProfileInput struct {
	FirstName   string
	LastName    string
	SSN         string
	DOB         string
	Address     string
	BankAcc     string
	BankRouting string
	Website     string
}

// BenefitUpdateInput sets a user's benefit start date (YYYY-MM-DD)
type BenefitUpdateInput struct {
	UserID    string
	StartDate string
}
