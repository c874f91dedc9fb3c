package promotion

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Validator validates a promotion code against a candidate order amount by
// looking up the live rule from a Repository. It has no side effects, so it
// is safe for checkout previews: the usage counter only moves when an order
// actually commits.
type Validator struct {
	repo Repository
	now  func() time.Time
}

// NewValidator creates a Validator backed by the given Repository.
func NewValidator(repo Repository) *Validator {
	return &Validator{repo: repo, now: time.Now}
}

// Validate normalizes the code, loads the rule, and applies the full
// validation chain against amount.
func (v *Validator) Validate(ctx context.Context, code string, amount decimal.Decimal) (*Applied, error) {
	rule, err := v.repo.FindByCode(ctx, Normalize(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "lookup promotion")
	}

	return Validate(rule, amount, v.now())
}
