package retirement

import (
	"strings"

	"github.com/portal/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MaxTotalContribution is the cap on preTax + afterTax + roth, in percent
var MaxTotalContribution = decimal.NewFromInt(30)

// Contributions are the percentages of salary a user contributes to each plan
type Contributions struct {
	UserID   uuid.UUID
	PreTax   decimal.Decimal
	AfterTax decimal.Decimal
	Roth     decimal.Decimal
}

// DefaultContributions returns the plan defaults for users who never saved any
func DefaultContributions(userID uuid.UUID) *Contributions {
	two := decimal.NewFromInt(2)
	return &Contributions{UserID: userID, PreTax: two, AfterTax: two, Roth: two}
}

// ParseContributions validates raw form values and builds Contributions
func ParseContributions(userID uuid.UUID, preTax, afterTax, roth string) (*Contributions, error) {
	values := make([]decimal.Decimal, 0, 3)
	for _, raw := range []string{preTax, afterTax, roth} {
		d, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil || d.IsNegative() {
			return nil, shared.InvalidInput("Invalid contribution percentages")
		}
		values = append(values, d)
	}

	c := &Contributions{UserID: userID, PreTax: values[0], AfterTax: values[1], Roth: values[2]}
	if c.Total().GreaterThan(MaxTotalContribution) {
		return nil, shared.InvalidInput("Contribution percentages cannot exceed 30 %")
	}
	return c, nil
}

// Total returns the combined contribution percentage
func (c *Contributions) Total() decimal.Decimal {
	return c.PreTax.Add(c.AfterTax).Add(c.Roth)
}
