package promotion

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// DiscountType enumerates the supported promotion discount strategies.
type DiscountType string

const (
	// DiscountPercentage discounts a percentage of the order subtotal,
	// optionally capped by MaxDiscount.
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixedAmount discounts a fixed amount, clamped at the subtotal.
	DiscountFixedAmount DiscountType = "fixed_amount"
)

var (
	// ErrNotFound is returned when a promotion code does not exist or has been
	// deactivated. The two cases are deliberately indistinguishable so the API
	// never leaks whether a code ever existed.
	ErrNotFound = errors.New("promotion code not found")
	// ErrExpired is returned when the current time falls outside the
	// promotion's [StartDate, EndDate] window.
	ErrExpired = errors.New("promotion code expired or not yet active")
	// ErrUsageLimitReached is returned when a promotion has exhausted its
	// allowed redemptions.
	ErrUsageLimitReached = errors.New("promotion code usage limit reached")
	// ErrNegativeAmount is returned when a discount is requested against a
	// negative order amount.
	ErrNegativeAmount = errors.New("order amount must not be negative")
)

// BelowMinimumError is returned when the order amount does not reach the
// promotion's minimum. The required minimum is part of the message so the
// shopper knows how much more to add.
type BelowMinimumError struct {
	Minimum decimal.Decimal
}

func (e *BelowMinimumError) Error() string {
	return fmt.Sprintf("order amount is below the required minimum of %s", e.Minimum)
}

// Code is a redeemable promotion code and its eligibility constraints.
// Optional constraints are pointers: nil means the constraint is absent,
// which is distinct from a zero threshold.
type Code struct {
	ID            string
	Code          string // stored uppercase
	Description   string
	DiscountType  DiscountType
	DiscountValue decimal.Decimal

	// MinOrderAmount gates redemption on a minimum subtotal.
	MinOrderAmount *decimal.Decimal
	// MaxDiscount caps percentage discounts. It never applies to fixed-amount
	// discounts: a fixed value is already its own bound.
	MaxDiscount *decimal.Decimal
	// UsageLimit caps total redemptions; nil means unlimited.
	UsageLimit *int
	// UsedCount is incremented once per successful order commit, never
	// decremented, and never exceeds UsageLimit when it is set.
	UsedCount int

	StartDate time.Time
	EndDate   time.Time
	IsActive  bool
}

// Applied summarizes a discount granted by a promotion code. It is the audit
// record persisted alongside the order: the amount recorded here stays fixed
// even if the promotion's parameters change later.
type Applied struct {
	PromotionID    string
	Code           string
	DiscountType   DiscountType
	DiscountValue  decimal.Decimal
	DiscountAmount decimal.Decimal
}

// Normalize uppercases a user-supplied code for comparison against the
// stored (already-uppercase) code column.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Repository provides lookup of promotion codes by their normalized code.
type Repository interface {
	// FindByCode returns the active promotion with the given code.
	// Deactivated and missing codes both yield ErrNotFound.
	FindByCode(ctx context.Context, code string) (*Code, error)
}
