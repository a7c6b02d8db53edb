package identity

import (
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used when hashing passwords
var PasswordCost = 12

var (
	usernamePattern    = regexp.MustCompile(`^[a-zA-Z0-9]{1,20}$`)
	emailPattern       = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	bankRoutingPattern = regexp.MustCompile(`^[0-9]+#$`)
	hasDigit           = regexp.MustCompile(`[0-9]`)
	hasLower           = regexp.MustCompile(`[a-z]`)
	hasUpper           = regexp.MustCompile(`[A-Z]`)
)

// User is a portal account holder. Admins manage benefits for everyone else.
type User struct {
	shared.BaseEntity
	Username         string
	FirstName        string
	LastName         string
	Email            string
	PasswordHash     string
	IsAdmin          bool
	BenefitStartDate *time.Time
	Profile          Profile
}

// Profile holds the personal and banking details a user maintains themselves
type Profile struct {
	SSN         string
	DOB         string
	Address     string
	BankAcc     string
	BankRouting string
	Website     string
}

// SignupInput is the validated data needed to open an account
type SignupInput struct {
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Verify    string
}

// NewUser validates signup data and creates a non-admin user
func NewUser(in SignupInput) (*User, error) {
	if err := ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}
	if in.Password != in.Verify {
		return nil, shared.InvalidInput("Password must match")
	}
	if in.Email != "" {
		if err := validateEmail(in.Email); err != nil {
			return nil, err
		}
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseEntity:   shared.NewBaseEntity(),
		Username:     strings.TrimSpace(in.Username),
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
	}, nil
}

// NewAdmin creates an administrator account. Used by seeding only.
func NewAdmin(in SignupInput) (*User, error) {
	u, err := NewUser(in)
	if err != nil {
		return nil, err
	}
	u.IsAdmin = true
	return u, nil
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// UpdateProfile replaces the user's self-service details after validation
func (u *User) UpdateProfile(firstName, lastName string, p Profile) error {
	if p.BankRouting != "" && !bankRoutingPattern.MatchString(p.BankRouting) {
		return shared.InvalidInput("Bank Routing number does not comply with requirements for format specified")
	}
	if p.Website != "" {
		parsed, err := url.ParseRequestURI(p.Website)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return shared.InvalidInput("Website must be an http or https URL")
		}
	}

	u.FirstName = strings.TrimSpace(firstName)
	u.LastName = strings.TrimSpace(lastName)
	u.Profile = p
	u.Touch()
	return nil
}

// SetBenefitStartDate records when the user's benefits begin
func (u *User) SetBenefitStartDate(start time.Time) {
	d := start.UTC().Truncate(24 * time.Hour)
	u.BenefitStartDate = &d
	u.Touch()
}

// ValidateUsername checks the username format
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return shared.InvalidInput("Invalid user name.")
	}
	return nil
}

// ValidatePassword enforces 8-18 characters with a digit, a lowercase and an uppercase letter
func ValidatePassword(password string) error {
	if len(password) < 8 || len(password) > 18 ||
		!hasDigit.MatchString(password) || !hasLower.MatchString(password) || !hasUpper.MatchString(password) {
		return shared.InvalidInput("Password must be 8 to 18 characters including numbers, lowercase and uppercase letters.")
	}
	return nil
}

func validateEmail(email string) error {
	if len(email) > 200 || !emailPattern.MatchString(email) {
		return shared.InvalidInput("Invalid email address.")
	}
	return nil
}

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// DummyPasswordCheck runs a bcrypt comparison against a throwaway hash so a
// login for an unknown user costs as much as one with a wrong password.
func DummyPasswordCheck(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("unused-password-Aa1"), PasswordCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// IDFromString parses a user ID, mapping malformed input to INVALID_INPUT
func IDFromString(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, shared.InvalidInput("Invalid user id")
	}
	return id, nil
}
