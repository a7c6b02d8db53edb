package retirement

import (
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Allocation is how a user's balance is split across asset classes, in percent
type Allocation struct {
	UserID uuid.UUID
	Stocks int
	Funds  int
	Bonds  int
}

// NewRandomAllocation seeds a fresh account with a random split summing to 100
func NewRandomAllocation(userID uuid.UUID) *Allocation {
	stocks := rand.IntN(40) + 1
	funds := rand.IntN(40) + 1
	return &Allocation{
		UserID: userID,
		Stocks: stocks,
		Funds:  funds,
		Bonds:  100 - stocks - funds,
	}
}

// ParseThreshold parses the optional stocks threshold filter.
// An empty string means no threshold.
func ParseThreshold(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n > 99 {
		return nil, shared.InvalidInput("Invalid threshold: must be an integer between 0 and 99")
	}
	return &n, nil
}
