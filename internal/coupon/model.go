package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindPercentage  Kind = "PERCENTAGE"
	KindFixedAmount Kind = "FIXED_AMOUNT"
)

type Coupon struct {
	ID   uint
	Code string
	Kind Kind

	// Value is a percentage for PERCENTAGE coupons, an amount for
	// FIXED_AMOUNT ones.
	Value           decimal.Decimal
	MinimumPurchase *decimal.Decimal

	// Validity window, date-inclusive on both ends.
	StartsAt time.Time
	EndsAt   time.Time

	MaxUses     *int
	CurrentUses int
	Active      bool

	CreatedAt time.Time
}

// Discount computes the discount this coupon yields on the given amount.
// A fixed-amount discount is capped at the amount it applies to, so a total
// can never go negative.
func (c *Coupon) Discount(amount decimal.Decimal) decimal.Decimal {
	switch c.Kind {
	case KindPercentage:
		return amount.Mul(c.Value).Div(decimal.NewFromInt(100))
	case KindFixedAmount:
		if c.Value.GreaterThan(amount) {
			return amount
		}
		return c.Value
	default:
		return decimal.Zero
	}
}

// Exhausted reports whether the usage cap has been reached.
func (c *Coupon) Exhausted() bool {
	return c.MaxUses != nil && c.CurrentUses >= *c.MaxUses
}

// InWindow reports whether the given day falls inside the validity window.
func (c *Coupon) InWindow(asOf time.Time) bool {
	day := asOf.Truncate(24 * time.Hour)
	start := c.StartsAt.Truncate(24 * time.Hour)
	end := c.EndsAt.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}
