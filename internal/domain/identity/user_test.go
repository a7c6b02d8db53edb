package identity

import (
	"testing"
	"time"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	PasswordCost = bcrypt.MinCost
}

func validSignup() SignupInput {
	return SignupInput{
		Username:  "jdoe",
		FirstName: "John",
		LastName:  "Doe",
		Email:     "jdoe@example.com",
		Password:  "Secret123",
		Verify:    "Secret123",
	}
}

func TestNewUser(t *testing.T) {
	t.Run("creates non-admin user with hashed password", func(t *testing.T) {
		user, err := NewUser(validSignup())

		require.NoError(t, err)
		assert.Equal(t, "jdoe", user.Username)
		assert.Equal(t, "John", user.FirstName)
		assert.False(t, user.IsAdmin)
		assert.NotEqual(t, "Secret123", user.PasswordHash)
		assert.True(t, user.VerifyPassword("Secret123"))
		assert.False(t, user.VerifyPassword("secret123"))
	})

	t.Run("email is optional", func(t *testing.T) {
		in := validSignup()
		in.Email = ""
		_, err := NewUser(in)
		assert.NoError(t, err)
	})

	tests := []struct {
		name   string
		mutate func(*SignupInput)
		msg    string
	}{
		{"empty username", func(in *SignupInput) { in.Username = "" }, "Invalid user name."},
		{"username with symbols", func(in *SignupInput) { in.Username = "j.doe" }, "Invalid user name."},
		{"username too long", func(in *SignupInput) { in.Username = "abcdefghijklmnopqrstu" }, "Invalid user name."},
		{"short password", func(in *SignupInput) { in.Password, in.Verify = "Ab1", "Ab1" }, "Password must be 8 to 18"},
		{"password without uppercase", func(in *SignupInput) { in.Password, in.Verify = "secret123", "secret123" }, "Password must be 8 to 18"},
		{"password without digit", func(in *SignupInput) { in.Password, in.Verify = "SecretPass", "SecretPass" }, "Password must be 8 to 18"},
		{"verify mismatch", func(in *SignupInput) { in.Verify = "Secret124" }, "Password must match"},
		{"bad email", func(in *SignupInput) { in.Email = "not-an-email" }, "Invalid email address."},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			in := validSignup()
			tt.mutate(&in)
			_, err := NewUser(in)

			require.Error(t, err)
			assert.ErrorIs(t, err, shared.ErrInvalidInput)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestNewAdmin(t *testing.T) {
	user, err := NewAdmin(validSignup())

	require.NoError(t, err)
	assert.True(t, user.IsAdmin)
}

func TestUser_UpdateProfile(t *testing.T) {
	t.Run("accepts valid routing number and website", func(t *testing.T) {
		user, err := NewUser(validSignup())
		require.NoError(t, err)

		err = user.UpdateProfile("Jane", "Roe", Profile{
			BankAcc:     "12345",
			BankRouting: "0198212#",
			Website:     "https://jane.example.com",
		})

		require.NoError(t, err)
		assert.Equal(t, "Jane", user.FirstName)
		assert.Equal(t, "0198212#", user.Profile.BankRouting)
	})

	t.Run("rejects routing number without trailing hash", func(t *testing.T) {
		user, _ := NewUser(validSignup())

		err := user.UpdateProfile("Jane", "Roe", Profile{BankRouting: "0198212"})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Equal(t, "John", user.FirstName, "profile must not change on validation failure")
	})

	t.Run("rejects non-http website", func(t *testing.T) {
		user, _ := NewUser(validSignup())

		err := user.UpdateProfile("Jane", "Roe", Profile{Website: "javascript:alert(1)"})

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}

func TestUser_SetBenefitStartDate(t *testing.T) {
	user, _ := NewUser(validSignup())
	start := time.Date(2030, 1, 15, 13, 45, 0, 0, time.UTC)

	user.SetBenefitStartDate(start)

	require.NotNil(t, user.BenefitStartDate)
	assert.Equal(t, time.Date(2030, 1, 15, 0, 0, 0, 0, time.UTC), *user.BenefitStartDate)
}

func TestIDFromString(t *testing.T) {
	_, err := IDFromString("not-a-uuid")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
