package promotion

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DiscountAmount computes the discount the rule grants against amount.
//
// Percentage discounts take floor(amount * value / 100) and are then capped
// by MaxDiscount when set. Fixed-amount discounts are the value itself.
// Either way the result is finally clamped to amount: a discount can never
// exceed what it applies to, so the payable remainder stays non-negative.
// A zero amount with a percentage code yields a zero discount, not an error,
// and a fixed discount larger than the order is clamped down, not rejected.
func DiscountAmount(c *Code, amount decimal.Decimal) (decimal.Decimal, error) {
	var d decimal.Decimal
	switch c.DiscountType {
	case DiscountPercentage:
		d = amount.Mul(c.DiscountValue).Div(hundred).Floor()
		if c.MaxDiscount != nil && d.GreaterThan(*c.MaxDiscount) {
			d = *c.MaxDiscount
		}
	case DiscountFixedAmount:
		d = c.DiscountValue
	default:
		return decimal.Zero, errors.Errorf("unsupported discount type: %q", c.DiscountType)
	}

	return decimal.Min(d, amount), nil
}

// Validate checks the rule against a candidate order amount at the given
// instant and returns the granted discount.
//
// The checks run in a fixed order: active flag, validity window, usage limit,
// minimum order amount, then the discount computation. Every rejection is a
// typed error and the whole function is deterministic for a given now.
func Validate(c *Code, amount decimal.Decimal, now time.Time) (*Applied, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	if !c.IsActive {
		return nil, ErrNotFound
	}
	if now.Before(c.StartDate) || now.After(c.EndDate) {
		return nil, ErrExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return nil, ErrUsageLimitReached
	}
	if c.MinOrderAmount != nil && amount.LessThan(*c.MinOrderAmount) {
		return nil, &BelowMinimumError{Minimum: *c.MinOrderAmount}
	}

	d, err := DiscountAmount(c, amount)
	if err != nil {
		return nil, err
	}

	return &Applied{
		PromotionID:    c.ID,
		Code:           c.Code,
		DiscountType:   c.DiscountType,
		DiscountValue:  c.DiscountValue,
		DiscountAmount: d,
	}, nil
}
