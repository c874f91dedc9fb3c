// Package cart models the pre-checkout cart as this service consumes it:
// read-only line items with prices frozen at add-to-cart time.
package cart

import (
	"context"

	"github.com/shopspring/decimal"
)

// Item is a single cart line. UnitPrice is the price quoted when the item
// was added, not the live variant price.
type Item struct {
	ID          string
	VariantID   string
	ProductName string
	VariantName string
	Quantity    int
	UnitPrice   decimal.Decimal
}

// Cart is a user's pre-checkout selection. Each user owns at most one cart;
// a successful checkout deletes all of its items.
type Cart struct {
	ID     string
	UserID string
	Items  []Item
}

// Provider supplies a user's cart with its items.
type Provider interface {
	// CartWithItems returns the user's cart, or nil when the user has none.
	CartWithItems(ctx context.Context, userID string) (*Cart, error)
}
