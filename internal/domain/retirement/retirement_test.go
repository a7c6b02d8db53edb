package retirement

import (
	"strings"
	"testing"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseContributions(t *testing.T) {
	userID := uuid.New()

	t.Run("accepts fractional percentages within the cap", func(t *testing.T) {
		c, err := ParseContributions(userID, "10.5", "9.5", "10")

		require.NoError(t, err)
		assert.True(t, c.Total().Equal(decimal.NewFromInt(30)))
		assert.Equal(t, userID, c.UserID)
	})

	t.Run("rejects total above 30", func(t *testing.T) {
		_, err := ParseContributions(userID, "10", "10", "10.01")

		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		assert.Contains(t, err.Error(), "cannot exceed 30 %")
	})

	for _, raw := range []string{"", "abc", "-1", "1e400x"} {
		t.Run("rejects "+raw, func(t *testing.T) {
			_, err := ParseContributions(userID, raw, "1", "1")
			assert.EqualError(t, err, "Invalid contribution percentages")
		})
	}
}

func TestDefaultContributions(t *testing.T) {
	c := DefaultContributions(uuid.New())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(6)))
}

func TestNewRandomAllocation(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := NewRandomAllocation(uuid.New())
		assert.Equal(t, 100, a.Stocks+a.Funds+a.Bonds)
		assert.Positive(t, a.Stocks)
		assert.Positive(t, a.Funds)
		assert.Positive(t, a.Bonds)
	}
}

func TestParseThreshold(t *testing.T) {
	th, err := ParseThreshold("")
	require.NoError(t, err)
	assert.Nil(t, th)

	th, err = ParseThreshold("25")
	require.NoError(t, err)
	assert.Equal(t, 25, *th)

	for _, raw := range []string{"100", "-1", "1; return 1 == 1", "ten"} {
		_, err := ParseThreshold(raw)
		assert.ErrorIs(t, err, shared.ErrInvalidInput, raw)
	}
}

func TestNewMemo(t *testing.T) {
	m, err := NewMemo("  remember to rebalance  ")
	require.NoError(t, err)
	assert.Equal(t, "remember to rebalance", m.Body)

	_, err = NewMemo("   ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = NewMemo(strings.Repeat("x", MaxMemoLength+1))
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}
