package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/AnQE180187/aura-checkout/internal/domain/cart"
	"github.com/AnQE180187/aura-checkout/internal/domain/promotion"
)

// Totals is the priced view of a cart: what an order would cost if committed
// right now.
type Totals struct {
	TotalAmount    decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
	Promotion      *promotion.Applied
}

// Subtotal returns the sum of quantity times unit price across all items.
func Subtotal(items []cart.Item) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return sum
}

// ComputeTotals prices the given cart items, applying rule when non-nil.
// A rejected promotion fails the whole computation: checkout must never
// silently drop an invalid code.
//
// The function has no side effects — calling it repeatedly with the same
// inputs and the same now yields identical totals, which is what makes it
// usable for previewing a checkout before committing.
func ComputeTotals(items []cart.Item, rule *promotion.Code, now time.Time) (*Totals, error) {
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	total := Subtotal(items)
	t := &Totals{
		TotalAmount:    total,
		DiscountAmount: decimal.Zero,
	}

	if rule != nil {
		applied, err := promotion.Validate(rule, total, now)
		if err != nil {
			return nil, err
		}
		t.DiscountAmount = applied.DiscountAmount
		t.Promotion = applied
	}

	// Non-negative by the validator's clamp.
	t.FinalAmount = total.Sub(t.DiscountAmount)
	return t, nil
}
